package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

type User struct {
	BaseModel
	Email        string   `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Name         string   `gorm:"size:255" json:"name"`
	Role         UserRole `gorm:"type:varchar(20);not null;index" json:"role"`
	Bio          string   `gorm:"type:text" json:"bio"`
	// Skills хранится как сериализованный JSON-массив в текстовой колонке,
	// чтобы LIKE-фильтр и сортировка работали одинаково на всех драйверах.
	Skills       datatypes.JSON `gorm:"type:text" json:"skills"`
	ProfileImage string         `gorm:"size:255" json:"profileImage"`
}

// SkillList декодирует Skills. Пустое или поврежденное значение даёт пустой список.
func (u *User) SkillList() []string {
	if len(u.Skills) == 0 {
		return []string{}
	}
	var skills []string
	if err := json.Unmarshal(u.Skills, &skills); err != nil || skills == nil {
		return []string{}
	}
	return skills
}

func (u *User) SetSkills(skills []string) error {
	if skills == nil {
		skills = []string{}
	}
	raw, err := json.Marshal(skills)
	if err != nil {
		return err
	}
	u.Skills = datatypes.JSON(raw)
	return nil
}

func (u *User) HasSkills() bool {
	return len(u.SkillList()) > 0
}

func (u *User) IsMentor() bool {
	return u.Role == UserRoleMentor
}
