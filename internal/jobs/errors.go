package jobs

import "errors"

// Ошибки jobs.
var (
	// ErrUnknownJobType — нет builder'а для данного типа.
	ErrUnknownJobType = errors.New("unknown job type")

	// ErrInvalidJob — определение job не прошло валидацию.
	ErrInvalidJob = errors.New("invalid job")

	// ErrHTTPRequest — HTTP-запрос завершился ошибкой.
	ErrHTTPRequest = errors.New("http request failed")

	// ErrCommandFailed — команда завершилась с ошибкой.
	ErrCommandFailed = errors.New("command failed")
)
