package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dkraev/parley/internal/domain"
)

func TestCanDeleteOwnLatestOnly(t *testing.T) {
	t.Parallel()

	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	t3 := t2.Add(time.Minute)

	m1 := domain.Message{ID: "m1", AuthorEmail: "a@x", CreatedAt: t1}
	m2 := domain.Message{ID: "m2", AuthorEmail: "a@x", CreatedAt: t2}
	m3 := domain.Message{ID: "m3", AuthorEmail: "a@x", CreatedAt: t3}
	other := domain.Message{ID: "m4", AuthorEmail: "b@x", CreatedAt: t3.Add(time.Minute)}
	all := []domain.Message{m1, m2, other, m3} // display order is not trusted

	author := &domain.Identity{Email: "a@x", Role: domain.RoleUser}
	admin := &domain.Identity{Email: "root@x", Role: domain.RoleAdmin}

	var p DeletionPolicy

	assert.False(t, p.CanDelete(m1, all, author))
	assert.False(t, p.CanDelete(m2, all, author))
	assert.True(t, p.CanDelete(m3, all, author))
	assert.False(t, p.CanDelete(other, all, author), "not the caller's message")

	for _, m := range []domain.Message{m1, m2, m3, other} {
		assert.True(t, p.CanDelete(m, all, admin), "admin deletes anything")
	}

	assert.False(t, p.CanDelete(m3, all, nil))
}

func TestCanDeleteExpertHasNoSpecialPower(t *testing.T) {
	t.Parallel()

	now := time.Now()
	mine := domain.Message{ID: "m1", AuthorEmail: "e@x", CreatedAt: now}
	newer := domain.Message{ID: "m2", AuthorEmail: "e@x", CreatedAt: now.Add(time.Second)}
	all := []domain.Message{mine, newer}

	expert := &domain.Identity{Email: "e@x", Role: domain.RoleExpert}

	var p DeletionPolicy
	assert.False(t, p.CanDelete(mine, all, expert))
	assert.True(t, p.CanDelete(newer, all, expert))
}
