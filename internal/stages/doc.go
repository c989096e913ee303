// Package stages реализует обработчики стадий pipeline.
//
// Каждая стадия оборачивает инструменты из internal/tools в
// engine.Handler: discovery сканирует сеть и репозиторий, оценка
// безопасности прогоняет каталог проверок, дальше идут генерация
// документации, SDK и эскалационный отчёт безопасности.
//
// Стадии обмениваются данными только через engine.State: типизированные
// outputs и счётчики CounterAPICount / CounterCriticalIssues.
package stages
