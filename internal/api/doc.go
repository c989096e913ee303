// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go          — Handler с DI (service, репозиторий, logger)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (logging, recovery)
//   - response.go         — унифицированные JSON-ответы и обработка ошибок
//   - dto.go              — Data Transfer Objects (request/response)
//   - pipeline_handler.go — обработчики для /pipelines
//   - run_handler.go      — обработчики для /runs
//
// API предоставляет REST endpoints для запуска pipelines и чтения
// runs с их отчётами.
package api
