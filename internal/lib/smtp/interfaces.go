// Package smtp реализует транспорт для отправки почтовых уведомлений через STARTTLS.
package smtp

import "io"

// Client описывает минимальный контракт SMTP-клиента, используемый отправителем.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}
