package utils // package utils provides small helpers shared across the service

import (
	"context"
	"crypto/md5"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// GravatarURL builds the Gravatar image URL for an email address. The
// protocol is just an MD5 of the normalized address; d=404 makes the host
// answer 404 instead of a generated placeholder when no image exists.
func GravatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(normalized))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=404", sum)
}

// Gravatar resolves default avatars for new accounts. It satisfies the
// account service's AvatarSource interface. Lookup is best effort; the
// caller swallows failures.
type Gravatar struct {
	Client  *http.Client
	baseURL string
}

func NewGravatar() *Gravatar {
	return &Gravatar{Client: &http.Client{Timeout: 3 * time.Second}}
}

// Lookup probes Gravatar for an image belonging to the address and
// returns its URL. A missing image or an unreachable host is an error.
func (g *Gravatar) Lookup(ctx context.Context, email string) (string, error) {
	url := GravatarURL(email)
	if g.baseURL != "" {
		normalized := strings.ToLower(strings.TrimSpace(email))
		url = fmt.Sprintf("%s/%x?d=404", g.baseURL, md5.Sum([]byte(normalized)))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gravatar: no image for %s (status %d)", email, resp.StatusCode)
	}
	return url, nil
}
