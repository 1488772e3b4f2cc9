package catalog

import (
	"os"
	"strings"
)

// LocaleFromEnv returns the messages locale in POSIX form, e.g. "de_DE@euro".
func LocaleFromEnv() string {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// localeKeys lists the keys to try for key under locale, most specific
// first, ending with the unlocalized key.
func localeKeys(key, locale string) []string {
	lang, country, modifier := splitLocale(locale)
	if lang == "" || lang == "C" || lang == "POSIX" {
		return []string{key}
	}

	var keys []string
	if country != "" && modifier != "" {
		keys = append(keys, key+"["+lang+"_"+country+"@"+modifier+"]")
	}
	if country != "" {
		keys = append(keys, key+"["+lang+"_"+country+"]")
	}
	if modifier != "" {
		keys = append(keys, key+"["+lang+"@"+modifier+"]")
	}
	return append(keys, key+"["+lang+"]", key)
}

// splitLocale splits lang_COUNTRY.ENCODING@MODIFIER, dropping the encoding.
func splitLocale(locale string) (lang, country, modifier string) {
	if i := strings.IndexByte(locale, '@'); i >= 0 {
		locale, modifier = locale[:i], locale[i+1:]
	}
	if i := strings.IndexByte(locale, '.'); i >= 0 {
		locale = locale[:i]
	}
	if i := strings.IndexByte(locale, '_'); i >= 0 {
		locale, country = locale[:i], locale[i+1:]
	}
	return locale, country, modifier
}
