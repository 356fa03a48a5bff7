// Package models содержит доменные структуры приложения: учётные записи,
// PIN-записи, заявки на оплату и сущности автопарка арендатора.
// Структуры используются в бизнес-логике и при работе с хранилищем.
package models

import "time"

// Статусы подписки пользователя.
const (
	StatusTrial          = "trial"
	StatusPendingPayment = "pending_payment"
	StatusActive         = "active"
	StatusExpired        = "expired" // встречается только как значение в данных
)

// Роли пользователей. Роли driver и client объявлены, но не используются.
const (
	RoleUser   = "user"
	RoleAdmin  = "admin"
	RoleDriver = "driver"
	RoleClient = "client"
)

// User представляет учётную запись арендатора или администратора.
type User struct {
	UUID               string     // Уникальный идентификатор пользователя
	Email              string     // Электронная почта (уникальная)
	DisplayName        string     // Отображаемое имя
	PhotoURL           string     // Ссылка на фото профиля (опционально)
	PasswordHash       string     // Хэш пароля пользователя
	Role               string     // Роль пользователя, admin или user
	SubscriptionStatus string     // Текущий статус подписки
	TrialStartDate     time.Time  // Дата начала пробного периода
	TrialEndDate       time.Time  // Дата окончания пробного периода
	SubscriptionEnd    *time.Time // Дата окончания оплаченной подписки, только при active
	LegacyPinHash      string     // Устаревшее поле с хэшем PIN на записи пользователя
	CompanyName        string     // Название компании арендатора
	CompanyCity        string     // Город компании
	CompanyMobile      string     // Контактный телефон компании
}

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
type DummyRegister struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required"`
	Password    string `json:"password" validate:"required,min=8"`
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// DummyCompanyProfile используется для обновления профиля компании.
// Операция защищена проверкой PIN.
type DummyCompanyProfile struct {
	Pin           string `json:"pin" validate:"required"`
	CompanyName   string `json:"company_name" validate:"required"`
	CompanyCity   string `json:"company_city" validate:"required"`
	CompanyMobile string `json:"company_mobile" validate:"required"`
}
