// Package orchestrator управляет выполнением runs.
//
// Orchestrator отвечает за:
//   - Последовательный обход цепочки стадий от входной до терминальной
//   - Применение skip/branch предикатов между стадиями
//   - Учёт статусов, таймингов и результатов стадий
//   - Сборку итогового RunReport
//
// Service поверх оркестратора связывает выполнение с внешним миром:
// реестр pipelines, персистентность, события RabbitMQ, метрики
// и сохранение отчётов.
package orchestrator
