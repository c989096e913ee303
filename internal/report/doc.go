// Package report отвечает за персистентность итогов run.
//
// Sink — интерфейс приёмника отчётов; FileSink пишет JSON на диск,
// MultiSink рассылает по нескольким приёмникам и переживает сбой
// любого из них. ArtifactStore хранит файлы, произведённые стадиями.
package report
