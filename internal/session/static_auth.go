package session

import (
	"context"
	"sync"
)

// StaticAuth - токен из конфига или переменной окружения.
// Обновления нет: если сервер отверг токен, RefreshSession вернет false.
// RefreshFunc позволяет подставить настоящий обмен токена.
type StaticAuth struct {
	mu          sync.Mutex
	token       string
	valid       bool
	RefreshFunc func(ctx context.Context) (string, error)
}

func NewStaticAuth(token string) *StaticAuth {
	return &StaticAuth{token: token, valid: token != ""}
}

func (a *StaticAuth) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

func (a *StaticAuth) IsSessionValid() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.valid
}

// Invalidate помечает токен отвергнутым.
func (a *StaticAuth) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.valid = false
}

func (a *StaticAuth) RefreshSession(ctx context.Context) bool {
	if a.RefreshFunc == nil {
		a.Invalidate()
		return false
	}
	token, err := a.RefreshFunc(ctx)
	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil || token == "" {
		a.valid = false
		return false
	}
	a.token = token
	a.valid = true
	return true
}
