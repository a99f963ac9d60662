package mq

import "errors"

// ErrNoChannel — соединение с брокером потеряно, канал ещё не восстановлен.
var ErrNoChannel = errors.New("no amqp channel available")
