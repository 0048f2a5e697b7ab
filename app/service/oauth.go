package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/dto"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/entity"
	"github.com/vibast-solutions/ms-go-mentor-auth/config"

	"golang.org/x/oauth2"
)

const maxProfileBytes = 1 << 20

type profileDecoder func(body []byte) (id, name string, err error)

// providerSpec is what differs between identity providers beyond configured endpoints.
type providerSpec struct {
	authStyle oauth2.AuthStyle
	scopes    []string
	decode    profileDecoder
}

var providerSpecs = map[entity.OAuthProvider]providerSpec{
	entity.OAuthProviderGoogle: {
		authStyle: oauth2.AuthStyleInHeader,
		scopes:    []string{"openid", "profile"},
		decode:    decodeGoogleProfile,
	},
	entity.OAuthProviderKakao: {
		authStyle: oauth2.AuthStyleInParams,
		scopes:    []string{"profile_nickname"},
		decode:    decodeKakaoProfile,
	},
	entity.OAuthProviderNaver: {
		authStyle: oauth2.AuthStyleInParams,
		decode:    decodeNaverProfile,
	},
}

type oauthProvider struct {
	name        entity.OAuthProvider
	config      *oauth2.Config
	userDataURI string
	decode      profileDecoder
}

// OAuthFederator runs the authorization code exchange against the configured providers.
type OAuthFederator struct {
	providers  map[entity.OAuthProvider]*oauthProvider
	httpClient *http.Client
	timeout    time.Duration
}

type FederatorOption func(*OAuthFederator)

func WithHTTPClient(client *http.Client) FederatorOption {
	return func(f *OAuthFederator) {
		if client != nil {
			f.httpClient = client
		}
	}
}

func NewOAuthFederator(cfg config.OAuthConfig, opts ...FederatorOption) *OAuthFederator {
	f := &OAuthFederator{
		providers:  make(map[entity.OAuthProvider]*oauthProvider),
		httpClient: &http.Client{},
		timeout:    cfg.Timeout,
	}
	if f.timeout <= 0 {
		f.timeout = 10 * time.Second
	}

	configured := map[entity.OAuthProvider]config.OAuthProviderConfig{
		entity.OAuthProviderGoogle: cfg.Google,
		entity.OAuthProviderKakao:  cfg.Kakao,
		entity.OAuthProviderNaver:  cfg.Naver,
	}
	for name, pc := range configured {
		if !pc.Enabled() {
			continue
		}
		spec := providerSpecs[name]
		f.providers[name] = &oauthProvider{
			name: name,
			config: &oauth2.Config{
				ClientID:     pc.ClientID,
				ClientSecret: pc.ClientSecret,
				RedirectURL:  pc.RedirectURI,
				Scopes:       spec.scopes,
				Endpoint: oauth2.Endpoint{
					AuthURL:   pc.AuthURI,
					TokenURL:  pc.TokenURI,
					AuthStyle: spec.authStyle,
				},
			},
			userDataURI: pc.UserDataURI,
			decode:      spec.decode,
		}
	}

	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *OAuthFederator) Providers() []entity.OAuthProvider {
	out := make([]entity.OAuthProvider, 0, len(f.providers))
	for name := range f.providers {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (f *OAuthFederator) AuthorizeURL(provider entity.OAuthProvider, state string) (string, error) {
	p, ok := f.providers[provider]
	if !ok {
		return "", ErrUnknownProvider
	}
	return p.config.AuthCodeURL(state), nil
}

// Exchange trades an authorization code for the provider's profile of the user.
// The whole exchange is bounded by the configured timeout.
func (f *OAuthFederator) Exchange(ctx context.Context, provider entity.OAuthProvider, code string) (*dto.OAuthProfile, error) {
	p, ok := f.providers[provider]
	if !ok {
		return nil, ErrUnknownProvider
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, f.exchangeError(ctx, p, StageToken, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userDataURI, nil)
	if err != nil {
		return nil, f.exchangeError(ctx, p, StageProfile, err)
	}
	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, f.exchangeError(ctx, p, StageProfile, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBytes))
	if err != nil {
		return nil, f.exchangeError(ctx, p, StageProfile, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, f.exchangeError(ctx, p, StageProfile, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	id, name, err := p.decode(body)
	if err != nil {
		return nil, f.exchangeError(ctx, p, StageNormalize, err)
	}

	return &dto.OAuthProfile{
		Provider:    p.name,
		ExternalID:  id,
		DisplayName: name,
	}, nil
}

func (f *OAuthFederator) exchangeError(ctx context.Context, p *oauthProvider, stage string, err error) error {
	if isTimeout(ctx, err) {
		stage = StageTimeout
	}
	return &OAuthExchangeError{Provider: string(p.name), Stage: stage, Err: err}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func decodeGoogleProfile(body []byte) (string, string, error) {
	var payload struct {
		ID   string `json:"id"`
		Sub  string `json:"sub"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", "", err
	}
	id := payload.ID
	if id == "" {
		id = payload.Sub
	}
	if id == "" {
		return "", "", errors.New("profile has no id")
	}
	return id, strings.TrimSpace(payload.Name), nil
}

func decodeKakaoProfile(body []byte) (string, string, error) {
	var payload struct {
		ID         json.Number `json:"id"`
		Properties struct {
			Nickname string `json:"nickname"`
		} `json:"properties"`
		KakaoAccount struct {
			Profile struct {
				Nickname string `json:"nickname"`
			} `json:"profile"`
		} `json:"kakao_account"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", "", err
	}
	if payload.ID == "" {
		return "", "", errors.New("profile has no id")
	}
	name := payload.KakaoAccount.Profile.Nickname
	if name == "" {
		name = payload.Properties.Nickname
	}
	return payload.ID.String(), strings.TrimSpace(name), nil
}

func decodeNaverProfile(body []byte) (string, string, error) {
	var payload struct {
		ResultCode string `json:"resultcode"`
		Message    string `json:"message"`
		Response   struct {
			ID       string `json:"id"`
			Nickname string `json:"nickname"`
			Name     string `json:"name"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", "", err
	}
	if payload.ResultCode != "00" {
		return "", "", fmt.Errorf("naver result %s: %s", payload.ResultCode, payload.Message)
	}
	if payload.Response.ID == "" {
		return "", "", errors.New("profile has no id")
	}
	name := payload.Response.Nickname
	if name == "" {
		name = payload.Response.Name
	}
	return payload.Response.ID, strings.TrimSpace(name), nil
}
