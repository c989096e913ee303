// Package tools содержит инструменты стадий pipeline.
//
// Инструменты выполняют реальную работу: сканирование сети, анализ
// git-репозитория, оценку безопасности, генерацию документации и SDK.
// Стадии из internal/stages оборачивают их в обработчики цепочки.
package tools
