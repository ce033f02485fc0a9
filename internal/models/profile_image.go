package models

// ProfileImage - текущее изображение профиля, одно на пользователя.
// Data заполняется при хранении в БД, StorageKey - при внешнем хранилище.
type ProfileImage struct {
	BaseModel
	UserID     uint   `gorm:"not null;uniqueIndex"`
	MimeType   string `gorm:"size:50;not null"`
	Size       int64  `gorm:"not null"`
	Data       []byte
	StorageKey string `gorm:"size:255"`
}
