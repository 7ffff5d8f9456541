// Package pid
// 模块名: 节点进程id
// 功能描述: 启动时把进程id写入运行目录,退出时删除
// 作者:  yr  2023/4/22 0022 2:03
// 最后更新:  yr  2026/10/16
package pid

import (
	"os"
	"path"
	"strconv"
)

func fileName(dir, name string) string {
	return path.Join(dir, name+".pid")
}

// RecordPID 记录pid
func RecordPID(dir, name string) error {
	return os.WriteFile(fileName(dir, name), []byte(strconv.Itoa(os.Getpid())), 0644)
}

// DeletePID 删除pid
func DeletePID(dir, name string) {
	_ = os.Remove(fileName(dir, name))
}

// ReadPID 读取记录的pid
func ReadPID(dir, name string) (int, error) {
	data, err := os.ReadFile(fileName(dir, name))
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(string(data))
}
