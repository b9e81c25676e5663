package gameapi

// fingerprintHeaders mimic the mobile web client of the game.
var fingerprintHeaders = map[string]string{
	"Accept":             "*/*",
	"Accept-Language":    "ru-RU,ru;q=0.9",
	"Connection":         "keep-alive",
	"Content-Type":       "application/json",
	"Origin":             "https://hamsterkombat.io/",
	"Referer":            "https://hamsterkombat.io/",
	"Sec-Fetch-Dest":     "empty",
	"Sec-Fetch-Mode":     "cors",
	"Sec-Fetch-Site":     "same-site",
	"User-Agent":         "Mozilla/5.0 (Linux; Android 6.0; Nexus 5 Build/MRA58N) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Mobile Safari/537.36",
	"sec-ch-ua":          `"Google Chrome";v="123", "Not:A-Brand";v="8", "Chromium";v="123"`,
	"sec-ch-ua-mobile":   "?1",
	"sec-ch-ua-platform": `"Android"`,
}
