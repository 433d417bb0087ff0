package tag

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type level int

func (l *level) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "low":
		*l = 1
	case "high":
		*l = 2
	default:
		return ErrUnsupportedType
	}
	return nil
}

type settings struct {
	Server struct {
		URL     string        `default:"http://localhost:8080"`
		Timeout time.Duration `default:"3s"`
	}
	Level   level    `default:"high"`
	Retries int      `default:"3"`
	Ratio   float64  `default:"0.5"`
	Enabled bool     `default:"true"`
	Tags    []string `default:"a, b"`
	Port    *int     `default:"80"`
	Child   *struct {
		Name string `default:"child"`
	}
	Empty string
}

func TestApplyDefaults(t *testing.T) {
	s := &settings{Retries: 7}
	require.NoError(t, ApplyDefaults(s))

	assert.Equal(t, "http://localhost:8080", s.Server.URL)
	assert.Equal(t, 3*time.Second, s.Server.Timeout)
	assert.Equal(t, level(2), s.Level)
	assert.Equal(t, 7, s.Retries, "existing value is kept")
	assert.Equal(t, 0.5, s.Ratio)
	assert.True(t, s.Enabled)
	assert.Equal(t, []string{"a", "b"}, s.Tags)
	require.NotNil(t, s.Port)
	assert.Equal(t, 80, *s.Port)
	assert.Nil(t, s.Child, "nil struct pointers are not allocated")
	assert.Empty(t, s.Empty)
}

func TestApplyDefaultsNestedPointer(t *testing.T) {
	s := &settings{}
	s.Child = &struct {
		Name string `default:"child"`
	}{}
	require.NoError(t, ApplyDefaults(s))
	assert.Equal(t, "child", s.Child.Name)
}

func TestApplyDefaultsErrors(t *testing.T) {
	assert.ErrorIs(t, ApplyDefaults(settings{}), ErrTargetMustBePointer)
	assert.ErrorIs(t, ApplyDefaults((*settings)(nil)), ErrTargetIsNil)

	n := 1
	assert.ErrorIs(t, ApplyDefaults(&n), ErrUnsupportedType)

	bad := &struct {
		Port int `default:"eighty"`
	}{}
	err := ApplyDefaults(bad)
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Port", fe.Path)
}
