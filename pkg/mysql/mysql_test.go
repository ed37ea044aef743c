package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "3306", User: "engine", Password: "secret", Name: "subscriptions"}

	assert.Equal(t, "engine:secret@tcp(db:3306)/subscriptions?charset=utf8mb4&parseTime=True&loc=UTC", buildDSN(cfg))
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, 10, orDefault(0, 10))
	assert.Equal(t, 10, orDefault(-1, 10))
	assert.Equal(t, 25, orDefault(25, 10))
}
