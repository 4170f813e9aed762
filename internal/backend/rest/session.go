package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
)

// savedCookie is the persisted form of a session cookie.
type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// loadSession restores cookies saved by a previous login.
func (c *Client) loadSession() error {
	if c.sessionPath == "" {
		return nil
	}
	data, err := os.ReadFile(c.sessionPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var saved []savedCookie
	if err := json.Unmarshal(data, &saved); err != nil {
		return err
	}
	cookies := make([]*http.Cookie, 0, len(saved))
	for _, sc := range saved {
		cookies = append(cookies, &http.Cookie{Name: sc.Name, Value: sc.Value, Path: "/"})
	}
	c.http.Jar.SetCookies(c.baseURL, cookies)
	return nil
}

// saveSession writes the jar's cookies for the API host with mode 0600.
func (c *Client) saveSession() error {
	if c.sessionPath == "" {
		return nil
	}
	var saved []savedCookie
	for _, ck := range c.http.Jar.Cookies(c.baseURL) {
		saved = append(saved, savedCookie{Name: ck.Name, Value: ck.Value})
	}
	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.sessionPath), 0700); err != nil {
		return err
	}
	return os.WriteFile(c.sessionPath, data, 0600)
}

// clearSession forgets all cookies and removes the session file.
func (c *Client) clearSession() error {
	if err := c.resetJar(); err != nil {
		return err
	}
	if c.sessionPath == "" {
		return nil
	}
	if err := os.Remove(c.sessionPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
