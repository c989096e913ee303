// Package scheduler запускает pipelines по cron-расписаниям.
//
// Расписания задаются строкой вида "full@0 2 * * *;compliance@0 */6 * * *"
// (переменная окружения SCHEDULES). Планировщик хранит время следующего
// запуска каждой записи и на каждом тике стартует runs, чьё время
// наступило.
//
// Использование:
//
//	entries, err := scheduler.ParseSchedules(os.Getenv("SCHEDULES"))
//	sched := scheduler.New(scheduler.Config{
//	    Starter: service,
//	    Entries: entries,
//	    Logger:  logger,
//	})
//	sched.Run(ctx, time.Second)
package scheduler
