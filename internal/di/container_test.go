// internal/di/container_test.go
package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainer_RegisterAndGet(t *testing.T) {
	c := NewContainer()

	c.Register("catalog", "一个服务")

	assert.Equal(t, "一个服务", c.Get("catalog"))
	assert.Nil(t, c.Get("不存在"))
}

func TestContainer_Has(t *testing.T) {
	c := NewContainer()

	assert.False(t, c.Has("wish"))
	c.Register("wish", 42)
	assert.True(t, c.Has("wish"))
}

func TestContainer_Remove(t *testing.T) {
	c := NewContainer()
	c.Register("stats", 1)

	c.Remove("stats")

	assert.False(t, c.Has("stats"))
}

func TestContainer_Clear(t *testing.T) {
	c := NewContainer()
	c.Register("a", 1)
	c.Register("b", 2)

	c.Clear()

	assert.Empty(t, c.GetNames())
}

func TestContainer_OverwriteRegistration(t *testing.T) {
	c := NewContainer()

	c.Register("config", "旧实例")
	c.Register("config", "新实例")

	assert.Equal(t, "新实例", c.Get("config"))
}

func TestGetContainer_IsSingleton(t *testing.T) {
	first := GetContainer()
	second := GetContainer()

	assert.Same(t, first, second)
}
