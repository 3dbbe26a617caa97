package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubUser is the subset of the GitHub user-info response the login
// flow needs.
type GitHubUser struct {
	ID        string
	Login     string
	Email     string
	AvatarURL string
}

// GitHubProvider wraps the oauth2 code-exchange flow against GitHub.
type GitHubProvider struct {
	cfg    *oauth2.Config
	client *http.Client
}

// NewGitHubProvider builds a GitHubProvider from client credentials.
func NewGitHubProvider(clientID, clientSecret, redirectURL string) *GitHubProvider {
	return &GitHubProvider{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"user:email"},
			Endpoint:     github.Endpoint,
		},
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// AuthCodeURL returns the GitHub authorization URL for the given state.
func (p *GitHubProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback code for an access token and fetches the
// user's identity from the GitHub API.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*GitHubUser, error) {
	token, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth code exchange: %w", err)
	}
	return p.fetchUser(ctx, token.AccessToken)
}

func (p *GitHubProvider) fetchUser(ctx context.Context, accessToken string) (*GitHubUser, error) {
	body, err := p.apiGet(ctx, "https://api.github.com/user", accessToken)
	if err != nil {
		return nil, err
	}

	var info struct {
		ID        int    `json:"id"`
		Login     string `json:"login"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("parse github user info: %w", err)
	}

	// GitHub may not return a public email; fall back to /user/emails.
	if info.Email == "" {
		info.Email, _ = p.fetchPrimaryEmail(ctx, accessToken)
	}

	return &GitHubUser{
		ID:        fmt.Sprintf("%d", info.ID),
		Login:     info.Login,
		Email:     info.Email,
		AvatarURL: info.AvatarURL,
	}, nil
}

func (p *GitHubProvider) fetchPrimaryEmail(ctx context.Context, accessToken string) (string, error) {
	body, err := p.apiGet(ctx, "https://api.github.com/user/emails", accessToken)
	if err != nil {
		return "", err
	}
	var emails []struct {
		Email   string `json:"email"`
		Primary bool   `json:"primary"`
	}
	if err := json.Unmarshal(body, &emails); err != nil {
		return "", err
	}
	for _, e := range emails {
		if e.Primary {
			return e.Email, nil
		}
	}
	if len(emails) > 0 {
		return emails[0].Email, nil
	}
	return "", nil
}

func (p *GitHubProvider) apiGet(ctx context.Context, url, accessToken string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github API %s returned %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
