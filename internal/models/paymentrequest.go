package models

import "time"

// Статусы заявки на оплату. Переходы только pending -> approved|rejected,
// approved и rejected терминальны.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// PaymentRequest представляет заявку арендатора на оплату подписки,
// которую рассматривает администратор.
type PaymentRequest struct {
	ID             string     // Идентификатор заявки
	RequesterUID   string     // Идентификатор арендатора
	RequesterEmail string     // Почта арендатора
	RequesterName  string     // Отображаемое имя арендатора
	Amount         float64    // Сумма заявки, валюта вне контракта
	Status         string     // pending, approved или rejected
	CreatedAt      time.Time  // Серверное время создания
	ProcessedAt    *time.Time // Время решения администратора
	ProcessorEmail string     // Почта администратора, принявшего решение
}

// DummyPaymentRequest используется для приёма заявки на оплату из JSON-запроса.
type DummyPaymentRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// DummyRequestDecision используется администратором для approve/reject/delete.
// Действие защищено проверкой PIN администратора.
type DummyRequestDecision struct {
	Pin string `json:"pin" validate:"required"`
}
