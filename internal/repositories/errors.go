package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrEmailTaken   = errors.New("email already registered")
	ErrStaleVersion = errors.New("profile changed since snapshot")
)

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
