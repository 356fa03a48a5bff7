package models

import "time"

// PinRecord хранит эталонный дайджест 4-значного PIN пользователя.
// На пользователя существует не более одной актуальной записи; само наличие
// записи означает "PIN настроен".
type PinRecord struct {
	OwnerUID   string    // Идентификатор владельца
	OwnerEmail string    // Почта владельца (денормализована для админ-списков)
	Digest     string    // Дайджест PIN в нижнем регистре hex
	CreatedAt  time.Time // Время создания записи
	UpdatedAt  time.Time // Время последнего обновления
}

// DummyPinSetup используется для приёма данных установки PIN из JSON-запроса.
// Confirm — повторный ввод, должен совпадать с Pin.
type DummyPinSetup struct {
	Pin     string `json:"pin" validate:"required"`
	Confirm string `json:"confirm" validate:"required"`
}

// DummyPinVerify используется для проверки PIN перед защищённым действием.
type DummyPinVerify struct {
	Pin string `json:"pin" validate:"required"`
}
