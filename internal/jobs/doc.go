// Package jobs предоставляет встроенные work items и загрузку их из файла.
//
// Структура:
//   - loader.go   — чтение jobs-файла (JSON) в []domain.WorkItemFactory
//   - registry.go — реестр типов jobs
//   - http.go     — job типа "http"
//   - command.go  — job типа "command"
//
// Формат файла:
//
//	{
//	  "jobs": [
//	    {
//	      "name": "nightly-report",
//	      "type": "http",
//	      "cron": "0 0 * * *",
//	      "config": {"method": "POST", "url": "http://app:8080/reports"}
//	    },
//	    {
//	      "name": "migrate",
//	      "type": "command",
//	      "cron": "-",
//	      "config": {"command": "/app/migrate up"}
//	    }
//	  ]
//	}
//
// enabled по умолчанию true. Строковые значения config проходят через
// os.ExpandEnv, так что секреты можно передавать через окружение.
package jobs
