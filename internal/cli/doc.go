// Package cli реализует инструмент командной строки apiforge.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с apiforge API.
// Работает через HTTP, не импортирует внутренние пакеты системы.
// CLI используется для запуска pipelines и просмотра runs с отчётами.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для apiforge API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	pipelines, err := client.ListPipelines()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: apiforge run list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - pipeline: list, show, start
//   - run: list, show, report
//
// Каждая группа создаётся через фабричную функцию (NewPipelineCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
