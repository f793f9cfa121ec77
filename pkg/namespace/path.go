package namespace

import (
	"path"
	"strings"
)

// Root 根目录路径
const Root = "/"

// Resolve 将用户输入的路径解析为规范绝对路径
func Resolve(cwd, p string) string {
	if strings.HasPrefix(p, "/") {
		return path.Clean(p)
	}
	return path.Clean(joinChild(cwd, p))
}

// Parent 返回规范路径的父目录，根目录的父目录仍是根目录
func Parent(p string) string {
	return path.Dir(p)
}

// IsCanonical 判断路径是否符合命名空间的键格式
func IsCanonical(p string) bool {
	return strings.HasPrefix(p, "/") && path.Clean(p) == p
}

// IsChild 判断 child 是否为 dir 的直接子路径
func IsChild(dir, child string) bool {
	if child == dir {
		return false
	}
	return Parent(child) == dir
}

func joinChild(dir, name string) string {
	if dir == Root {
		return Root + name
	}
	return dir + "/" + name
}
