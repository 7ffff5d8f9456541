// Package validate
// @Title  配置校验
// @Description  使用binding标签校验结构体,错误信息支持中英文翻译
// @Author  yr  2026/10/16
// @Update  yr  2026/10/16
package validate

import (
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	zhTranslations "github.com/go-playground/validator/v10/translations/zh"
)

type Language string

const (
	EN Language = "en"
	ZH Language = "zh"
)

const tagName = "binding"

var (
	validate *validator.Validate
	uni      *ut.UniversalTranslator
)

func init() {
	validate = validator.New()
	validate.SetTagName(tagName)

	enLocale := en.New()
	uni = ut.New(enLocale, enLocale, zh.New())

	if trans, ok := uni.GetTranslator(string(EN)); ok {
		if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
			panic(err)
		}
	}
	if trans, ok := uni.GetTranslator(string(ZH)); ok {
		if err := zhTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
			panic(err)
		}
	}
}

// Struct 按binding标签校验结构体
func Struct(s interface{}) error {
	return validate.Struct(s)
}

// TransError 把校验错误翻译成指定语言,非校验错误原样返回
func TransError(err error, lang Language) error {
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}
	trans, _ := uni.GetTranslator(string(lang))

	msgMap := errs.Translate(trans)
	keys := make([]string, 0, len(msgMap))
	for k := range msgMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, k+": "+msgMap[k])
	}
	return errors.New(strings.Join(msgs, "; "))
}
