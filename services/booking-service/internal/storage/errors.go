package storage

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/agentbook/libs/db"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrOverlap   = errors.New("overlapping booking")
	ErrDuplicate = errors.New("duplicate key")
)

// translate maps driver errors onto the package sentinels; anything else passes through.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	}
	switch db.SQLState(err) {
	case db.CodeExclusionViolation:
		return ErrOverlap
	case db.CodeUniqueViolation:
		return ErrDuplicate
	}
	return err
}
