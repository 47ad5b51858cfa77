package utils

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"
)

// GetIPLocation resolves a coarse "City, Country" label for the session
// audit trail. Lookup failures degrade to "Unknown"; login never depends on
// this call succeeding.
func GetIPLocation(ipAddress string) string {
	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return "Unknown"
	}
	if ip.IsLoopback() || ip.IsPrivate() {
		return "Local"
	}

	url := fmt.Sprintf("http://ip-api.com/json/%s", ipAddress)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return "Unknown"
	}
	defer resp.Body.Close()

	var result struct {
		Country string `json:"country"`
		City    string `json:"city"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "Unknown"
	}

	if result.City != "" && result.Country != "" {
		return fmt.Sprintf("%s, %s", result.City, result.Country)
	}

	return "Unknown"
}
