package code

import (
	"errors"
	"sync/atomic"
)

// lang holds the English and Simplified Chinese text of a message.
// lang 存储英文与简体中文文本
type lang struct {
	en    string
	zh_cn string
}

const FALLBACK_LNG = "en"

var supported = []string{"en", "zh_cn"}

var lng atomic.Value

func init() {
	lng.Store(FALLBACK_LNG)
}

// GetMessage returns the message in the current process language, falling back to English.
// GetMessage 按当前语言返回消息，缺失时回退到英文
func (l lang) GetMessage() string {
	cur, _ := lng.Load().(string)
	if cur == "zh_cn" && l.zh_cn != "" {
		return l.zh_cn
	}
	if l.en != "" {
		return l.en
	}
	return l.zh_cn
}

// GetSupportedLanguages 返回支持的语言列表
func GetSupportedLanguages() []string {
	return append([]string{}, supported...)
}

// SetGlobalDefaultLang sets the process language. Unknown values reset to English.
// SetGlobalDefaultLang 设置全局默认语言，不支持的语言回退为英文
func SetGlobalDefaultLang(language string) error {
	for _, l := range supported {
		if l == language {
			lng.Store(language)
			return nil
		}
	}
	lng.Store(FALLBACK_LNG)
	return errors.New("unsupported language type, set defaulting to " + FALLBACK_LNG)
}
