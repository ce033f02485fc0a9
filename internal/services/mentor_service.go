package services

import (
	"strings"

	"gorm.io/gorm"

	"mentormatch_backend/internal/repositories"
	"mentormatch_backend/internal/services/dto"
	"mentormatch_backend/pkg/apperrors"
)

type MentorService interface {
	ListMentors(db *gorm.DB, query *dto.MentorListQuery) ([]dto.MentorResponse, error)
}

type MentorServiceImpl struct {
	userRepo repositories.UserRepository
	settings ImageSettings
}

func NewMentorService(userRepo repositories.UserRepository, settings ImageSettings) MentorService {
	return &MentorServiceImpl{
		userRepo: userRepo,
		settings: settings,
	}
}

// ListMentors - каталог менторов с фильтром по навыку и сортировкой.
func (s *MentorServiceImpl) ListMentors(db *gorm.DB, query *dto.MentorListQuery) ([]dto.MentorResponse, error) {
	filter := repositories.MentorFilter{
		Skill: strings.TrimSpace(query.Skill),
	}
	switch query.OrderBy {
	case repositories.MentorOrderByName, repositories.MentorOrderBySkill:
		filter.OrderBy = query.OrderBy
	default:
		filter.OrderBy = repositories.MentorOrderByID
	}

	mentors, err := s.userRepo.ListMentors(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.MentorResponse, 0, len(mentors))
	for i := range mentors {
		m := &mentors[i]
		imageURL := m.ProfileImage
		if imageURL == "" {
			imageURL = s.settings.MentorPlaceholder
		}
		result = append(result, dto.MentorResponse{
			ID:    m.ID,
			Email: m.Email,
			Role:  m.Role,
			Profile: dto.MentorProfile{
				Name:     m.Name,
				Bio:      m.Bio,
				ImageURL: imageURL,
				Skills:   m.SkillList(),
			},
		})
	}
	return result, nil
}
