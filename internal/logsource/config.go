package logsource

import "time"

const (
	DefaultURL     = "http://help.ied.com/logplat/curl2.php"
	DefaultReferer = "http://help.ied.com/helpv2/html/showInfo_v2.html"
	DefaultTimeout = 30 * time.Second
)

type Config struct {
	URL     string
	Referer string
	// Cookie is the browser session cookie of a logged-in operator.
	Cookie  string
	Timeout time.Duration
}

func DefaultConfig(cookie string) Config {
	return Config{
		URL:     DefaultURL,
		Referer: DefaultReferer,
		Cookie:  cookie,
		Timeout: DefaultTimeout,
	}
}
