package errors

import "fmt"

var (
	ErrWorkerPanic          = fmt.Errorf("worker panic")
	ErrUnknownLanguage      = fmt.Errorf("unknown language code")
	ErrEmptyText            = fmt.Errorf("empty text")
	ErrMissingAPIKey        = fmt.Errorf("translation api key is not set")
	ErrTranslationRejected  = fmt.Errorf("translation provider rejected the request")
	ErrMalformedTranslation = fmt.Errorf("malformed translation response")
)
