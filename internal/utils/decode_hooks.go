package utils

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

const (
	urlParseErrorTemplateConstant  = "invalid URL %q: %w"
	urlNotAbsoluteTemplateConstant = "URL %q must be absolute"
)

var (
	urlValueType   = reflect.TypeOf(url.URL{})
	urlPointerType = reflect.TypeOf(&url.URL{})
)

// StringToURLHookFunc decodes strings into url.URL or *url.URL fields. Empty strings decode to nil pointers.
func StringToURLHookFunc() mapstructure.DecodeHookFuncType {
	return func(sourceType reflect.Type, targetType reflect.Type, data any) (any, error) {
		if sourceType.Kind() != reflect.String {
			return data, nil
		}
		if targetType != urlValueType && targetType != urlPointerType {
			return data, nil
		}

		trimmedValue := strings.TrimSpace(data.(string))
		if len(trimmedValue) == 0 {
			if targetType == urlPointerType {
				return (*url.URL)(nil), nil
			}
			return url.URL{}, nil
		}

		parsedURL, parseError := url.Parse(trimmedValue)
		if parseError != nil {
			return nil, fmt.Errorf(urlParseErrorTemplateConstant, trimmedValue, parseError)
		}
		if !parsedURL.IsAbs() {
			return nil, fmt.Errorf(urlNotAbsoluteTemplateConstant, trimmedValue)
		}

		if targetType == urlPointerType {
			return parsedURL, nil
		}
		return *parsedURL, nil
	}
}
