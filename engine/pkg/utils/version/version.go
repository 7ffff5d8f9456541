// Package version
// Mode Module: 版本号
// Mode Desc: 对象池引擎版本
package version

var Version = "0.3.0"

// Fix 未指定应用版本时使用引擎版本
func Fix(v string) string {
	if v == "" {
		return Version
	}
	return v
}
