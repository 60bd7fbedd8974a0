package platform

import (
	"net/url"
	"strings"
	"sync"

	"github.com/derekparker/trie"
	"github.com/emirpasic/gods/maps/hashmap"
	"github.com/emirpasic/gods/sets/hashset"
	"github.com/npillmayer/schuko"
	"golang.org/x/net/idna"
)

// FormatFlags are the format hints of a webfont source, as given by the
// format() function in @font-face rules.
type FormatFlags uint32

// Webfont formats.
const (
	FormatUnknown FormatFlags = 1 << iota
	FormatOpenType
	FormatTrueType
	FormatTrueTypeAAT
	FormatEOT
	FormatSVG
	FormatWOFF
	FormatWOFF2

	// FormatsCommon are the formats the platform can load.
	FormatsCommon = FormatOpenType | FormatTrueType | FormatWOFF | FormatWOFF2
)

// Blocklist holds rules for webfont URLs which must not be loaded. Rules
// only apply to http and https URLs, except for exact URLs.
//
// Three kinds of rules exist:
//
// ■ exact URLs
//
// ■ a host together with a path prefix
//
// ■ a host together with a key, which has to occur anywhere in the URL.
// This is for URLs with changing version infixes.
//
// Blocklist is safe for concurrent use.
type Blocklist struct {
	sync.RWMutex
	exact    *hashset.Set // URL strings
	prefixes *trie.Trie   // host + path prefix
	hostKeys *hashmap.Map // host → []string
}

// NewBlocklist creates a blocklist with the built-in rules and additional
// exact URLs.
func NewBlocklist(urls ...string) *Blocklist {
	bl := &Blocklist{
		exact:    hashset.New(),
		prefixes: trie.New(),
		hostKeys: hashmap.New(),
	}
	for _, u := range builtinExactURLs {
		bl.AddURL(u)
	}
	for _, r := range builtinPrefixes {
		bl.AddPrefix(r[0], r[1])
	}
	for _, r := range builtinHostKeys {
		bl.AddHostKey(r[0], r[1])
	}
	for _, u := range urls {
		bl.AddURL(u)
	}
	return bl
}

// BlocklistFrom creates a blocklist with the built-in rules, plus exact URLs
// configured as a comma separated list under key 'gfx.font-blocklist'.
func BlocklistFrom(conf schuko.Configuration) *Blocklist {
	var urls []string
	if conf != nil {
		for _, u := range strings.Split(conf.GetString("gfx.font-blocklist"), ",") {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
	}
	tracer().Debugf("webfont blocklist with %d configured URLs", len(urls))
	return NewBlocklist(urls...)
}

// AddURL blocks a single URL. Malformed URLs are ignored.
func (bl *Blocklist) AddURL(rawurl string) {
	spec, _, err := asciiSpec(rawurl)
	if err != nil {
		tracer().Errorf("webfont blocklist ignores malformed URL %q: %v", rawurl, err)
		return
	}
	bl.Lock()
	defer bl.Unlock()
	bl.exact.Add(spec)
}

// AddPrefix blocks all http and https URLs for host with a path starting
// with pathPrefix.
func (bl *Blocklist) AddPrefix(host, pathPrefix string) {
	ah, err := asciiHost(host)
	if err != nil {
		tracer().Errorf("webfont blocklist ignores malformed host %q: %v", host, err)
		return
	}
	bl.Lock()
	defer bl.Unlock()
	bl.prefixes.Add(ah+pathPrefix, nil)
}

// AddHostKey blocks all http and https URLs for host containing key.
func (bl *Blocklist) AddHostKey(host, key string) {
	ah, err := asciiHost(host)
	if err != nil {
		tracer().Errorf("webfont blocklist ignores malformed host %q: %v", host, err)
		return
	}
	bl.Lock()
	defer bl.Unlock()
	var keys []string
	if k, found := bl.hostKeys.Get(ah); found {
		keys = k.([]string)
	}
	bl.hostKeys.Put(ah, append(keys, key))
}

// IsBlocked reports whether a webfont URL is blocked. URLs which cannot be
// parsed, and http(s) URLs without a host, count as blocked.
func (bl *Blocklist) IsBlocked(rawurl string) bool {
	spec, u, err := asciiSpec(rawurl)
	if err != nil {
		tracer().Debugf("webfont URL %q cannot be parsed: %v", rawurl, err)
		return true
	}
	bl.RLock()
	defer bl.RUnlock()
	if bl.exact.Contains(spec) {
		return true
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" {
		return true
	}
	rest := strings.TrimPrefix(spec, u.Scheme+"://")
	if bl.hasPrefixRule(rest) {
		return true
	}
	if keys, found := bl.hostKeys.Get(u.Hostname()); found {
		for _, key := range keys.([]string) {
			if strings.Contains(spec, key) {
				return true
			}
		}
	}
	return false
}

// hasPrefixRule walks down the prefix trie along s and reports whether a
// rule is a prefix of s.
func (bl *Blocklist) hasPrefixRule(s string) bool {
	for i := 1; i <= len(s); i++ {
		if !bl.prefixes.HasKeysWithPrefix(s[:i]) {
			return false
		}
		if _, ok := bl.prefixes.Find(s[:i]); ok {
			return true
		}
	}
	return false
}

// IsFontFormatSupported reports whether a webfont may be loaded, given its
// URL and its format hints. Blocked URLs are not supported. Fonts with
// a hint for a common format are supported, fonts with hints for other
// formats are not. Fonts without any hint are supported, as their format
// will be detected from the data.
func (bl *Blocklist) IsFontFormatSupported(rawurl string, flags FormatFlags) bool {
	if bl.IsBlocked(rawurl) {
		tracer().Infof("blocking incompatible webfont %s", rawurl)
		return false
	}
	if flags&FormatsCommon != 0 {
		return true
	}
	return flags == 0
}

// asciiSpec normalizes a URL to its ASCII form, with the host lower-cased
// and IDNA-encoded.
func asciiSpec(rawurl string) (string, *url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawurl))
	if err != nil {
		return "", nil, err
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if h := u.Hostname(); h != "" {
		ah, err := asciiHost(h)
		if err != nil {
			return "", nil, err
		}
		if p := u.Port(); p != "" {
			ah += ":" + p
		}
		u.Host = ah
	}
	return u.String(), u, nil
}

func asciiHost(host string) (string, error) {
	return idna.Lookup.ToASCII(strings.ToLower(host))
}

// --- Built-in rules --------------------------------------------------------

var builtinExactURLs = []string{
	"https://www.wm.com/etc.clientlibs/wm/clientlibs/react-app/resources/fonts/56c766e2-7578-4ae7-8531-1c063c276d37.woff",
	"https://www.wm.com/etc.clientlibs/wm/clientlibs/react-app/resources/fonts/92ebef0f-380f-40af-b2e3-7d3275cb73cd.woff",
	"https://www.wm.com/etc.clientlibs/wm/clientlibs/react-app/resources/fonts/5652257a-eb06-43ed-b7b9-77444c65f9e6.woff",
	"https://www.wm.com/etc.clientlibs/wm/clientlibs/react-app/resources/fonts/4f99cc7e-9e83-4698-bf36-c7033e16db05.woff",
	"https://www.wm.com/etc.clientlibs/wm/clientlibs/react-app/resources/fonts/4d27f3a7-2889-440f-a415-734d7d9e80a7.woff",
	"https://www.kulturstiftung-des-bundes.de/typo3conf/ext/base_ksb/Resources/Public/38c1bdeb69b2cae2f59fae38f127aa6d.woff2",
	"https://cdn-static-1.medium.com/_/fp/fonts/charter-nonlatin.b-nw7PXlIqmGHGmHvkDiTw.woff",
}

var builtinPrefixes = [][2]string{
	{"assets.tagesspiegel.de", "/fonts/Abril_Text_"},
	{"assets.tagesspiegel.de", "/fonts/franklingothic-"},
	{"fonts.gstatic.com", "/ea/notosansjapanese/v6/NotoSansJP-"},
	{"fonts.gstatic.com", "/s/notosansjp/v14/"},
	{"fonts.gstatic.com", "/s/pressstart2p/v9/"},
	{"www.icloud.com", "/fonts/SFUIText-"},
	{"www.icloud.com", "/fonts/current/fonts/SFNSText-"},
	{"www.icloud.com", "/fonts/current/fonts/SFNSDisplay-"},
	{"typeface.nyt.com", "/fonts/nyt-cheltenham-"},
	{"typeface.nytimes.com", "/fonts/nyt-cheltenham-"},
	{"www.washingtonpost.com", "/wp-stat/assets/fonts/PostoniWide-"},
	{"www.apple.com", "/wss/fonts/SF-Pro-JP/v1/"}, // SF-Pro- alone would catch working dingbat fonts
	{"www.apple.com", "/wss/fonts/SF-Pro-Text/v1/"},
	{"www.apple.com", "/wss/fonts/SF-Pro-Display/v1/"},
	{"lib.intuitcdn.net", "/fonts/AvenirNext/1.0/"},
	{"lib.intuitcdn.net", "/fonts/AvenirNext/3.0/"},
	{"use.typekit.net", "/af/e3bd4a/00000000000000003b9ade5d/"},
	{"use.typekit.net", "/af/dd9acd/0000000000000000000177dc/"},
	{"use.typekit.net", "/af/7088b5/0000000000000000000177de/"},
	{"use.typekit.net", "/af/430cc5/0000000000000000000177da/"},
	{"platform-assets.typekit.net", "/AND-Regular."},
	{"ici.radio-canada.ca", "/unit/app/assets/fonts/Radio-Canada/"},
	{"www.adac.de", "/assets/font/milo-"},
	{"www.adac.de", "/static/Milo"},
	{"www.heise.de", "/sso/fonts/SourceSansPro-"},
	{"www.vetmed.fu-berlin.de", "/assets/default2/NexusSansWeb-P"},
	{"www.theatlantic.com", "/packages/fonts/garamond/AGaramondPro"},
	{"www.theatlantic.com", "/packages/fonts/goldwyn/goldwyn"},
	{"www.theatlantic.com", "/packages/fonts/atlantic/Atlantic-Serif"},
	{"www.kulturstiftung-des-bundes.de", "/typo3conf/ext/base_ksb/Resources/Public/"},
	{"cdn.trustpilot.net", "/brand-assets/2.1.0/fonts/trustpilot-default-font-"},
	{"www.swr3.de", "/static/dist/fonts/TheSans/"},
	{"hartzfacts.de", "/google-fonts/s/notoseriftc/v7/"},
	{"som.yale.edu", "/themes/custom/som/fonts/neuehaasunica/NeueHaasUnicaBlack"},
}

var builtinHostKeys = [][2]string{
	{"www.latimes.com", "/fonts/KisFBDisplay-"},
	{"www.nerdwallet.com", "Gotham-Book--critical"},
	{"www.nerdwallet.com", "Gotham-Bold--critical"},
}
