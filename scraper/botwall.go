package scraper

import (
	"regexp"
	"strings"
)

// botWallPatterns are known markers of anti-automation challenge pages.
// Links mined from such a page are lower-confidence, and an empty
// extraction from one is not evidence the listing had no products.
var botWallPatterns = []*regexp.Regexp{
	regexp.MustCompile(`captcha`),
	regexp.MustCompile(`recaptcha`),
	regexp.MustCompile(`hcaptcha`),
	regexp.MustCompile(`turnstile`),
	regexp.MustCompile(`cf-chl-`),
	regexp.MustCompile(`just a moment`),
	regexp.MustCompile(`checking your browser`),
	regexp.MustCompile(`verify you are human`),
	regexp.MustCompile(`access denied`),
	regexp.MustCompile(`bot detected`),
	regexp.MustCompile(`ddos protection`),
	regexp.MustCompile(`incapsula`),
	regexp.MustCompile(`imperva`),
	regexp.MustCompile(`distil networks`),
	regexp.MustCompile(`please enable javascript and cookies`),
}

// IsBotWall reports whether the page body looks like a bot challenge
// instead of real content.
func IsBotWall(html string) bool {
	s := strings.ToLower(html)
	for _, re := range botWallPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
