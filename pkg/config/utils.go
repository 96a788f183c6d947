package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// expandPath 替换 {{.AppName}} 与 {{.ExecDir}}
func expandPath(tpl, appName string) string {
	execDir := "."
	if exe, err := os.Executable(); err == nil {
		execDir = filepath.Dir(exe)
	}
	r := strings.NewReplacer("{{.AppName}}", appName, "{{.ExecDir}}", execDir)
	return r.Replace(tpl)
}

// checkFile 路径存在且不是目录
func checkFile(path string) error {
	if path == "" {
		return fmt.Errorf("path is empty")
	}
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("path is a directory: %s", path)
	}
	return nil
}
