// Package mq публикует события pipeline в RabbitMQ.
//
// Структура:
//   - connection.go — соединение с автоматическим переподключением
//   - topology.go   — объявление обменника, очередей и привязок
//   - publisher.go  — публикация событий
//
// События уходят в topic-обменник apiforge.events:
//   - run.started     — run принят в работу
//   - stage.finished  — стадия получила терминальный статус
//   - run.finished    — run завершён, отчёт собран
//
// Сервис — единственный публикатор; потребители внешние, поэтому
// consumer-стороны здесь нет.
package mq
