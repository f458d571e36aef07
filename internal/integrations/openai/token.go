package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// TokenSource supplies the bearer token for upstream requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a token taken from configuration.
type StaticToken string

func (t StaticToken) Token(_ context.Context) (string, error) {
	if strings.TrimSpace(string(t)) == "" {
		return "", errors.New("openai: API token is empty")
	}
	return string(t), nil
}

type Getter interface {
	GetToken(ctx context.Context, name string) (string, error)
}

// ParamToken fetches the token from a parameter store on first use and keeps
// it for the lifetime of the process. Failed fetches are retried on the next
// call.
type ParamToken struct {
	getter Getter
	name   string

	mu    sync.Mutex
	token string
}

func NewParamToken(getter Getter, name string) (*ParamToken, error) {
	if getter == nil {
		return nil, errors.New("openai: paramstore getter must not be nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("openai: token parameter name is empty")
	}
	return &ParamToken{getter: getter, name: name}, nil
}

func (p *ParamToken) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != "" {
		return p.token, nil
	}
	tok, err := p.getter.GetToken(ctx, p.name)
	if err != nil {
		return "", fmt.Errorf("openai: fetch token from paramstore: %w", err)
	}
	if strings.TrimSpace(tok) == "" {
		return "", errors.New("openai: API token is empty")
	}
	p.token = tok
	return tok, nil
}
