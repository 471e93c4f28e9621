package user

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(u *User) error
	GetUserByID(id string) (*User, error)
	GetUserByEmail(email string) (*User, error)
	GetUsersByIDs(ids []string) ([]User, error)
	UpdateUser(u *User) error
	UpdateProfile(id string, patch map[string]interface{}) (*User, error)
	UpdateTier(id string, tier string) error
	AppendCreatedEvent(id string, eventID uint) error

	// IncrementBans atomically bumps the user's ban count by one and
	// returns the new value. A single UPDATE ... RETURNING replaces the
	// read-modify-verify sequence a non-transactional store would need.
	IncrementBans(id string) (int, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(u *User) error {
	return r.db.Create(u).Error
}

func (r *userRepository) GetUserByID(id string) (*User, error) {
	var u User
	if err := r.db.Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetUserByEmail(email string) (*User, error) {
	var u User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetUsersByIDs(ids []string) ([]User, error) {
	var users []User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) UpdateUser(u *User) error {
	return r.db.Save(u).Error
}

func (r *userRepository) UpdateProfile(id string, patch map[string]interface{}) (*User, error) {
	// id and email are immutable; callers build the patch from a bound
	// request struct, this is a second line of defense.
	delete(patch, "id")
	delete(patch, "email")

	if err := r.db.Model(&User{}).Where("id = ?", id).Updates(patch).Error; err != nil {
		return nil, err
	}
	return r.GetUserByID(id)
}

func (r *userRepository) UpdateTier(id string, tier string) error {
	return r.db.Model(&User{}).Where("id = ?", id).Update("tier", tier).Error
}

func (r *userRepository) AppendCreatedEvent(id string, eventID uint) error {
	return r.db.Model(&User{}).Where("id = ?", id).
		Update("created_events", gorm.Expr("array_append(created_events, ?::bigint)", eventID)).Error
}

func (r *userRepository) IncrementBans(id string) (int, error) {
	var u User
	result := r.db.Model(&u).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "bans"}}}).
		Where("id = ?", id).
		Update("bans", gorm.Expr("bans + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return u.Bans, nil
}
