// Package namespace 实现内存中的层级文件系统：路径解析、节点存取与全部变更/查询操作。
//
// 命名空间是一个扁平的 路径 -> 节点 映射，层级关系仅由路径前缀体现。
// mv、cp、rm 只作用于单个键，不会递归处理同前缀的其它键。
package namespace

import (
	"sort"
	"strings"
)

// Session 持有当前目录与整个命名空间
type Session struct {
	cwd     string
	entries map[string]*Node
}

// WriteResult 描述一次 echo 写入
type WriteResult struct {
	Target  string
	Path    string
	Created bool
}

// New 创建只包含根目录的会话
func New() *Session {
	return &Session{
		cwd:     Root,
		entries: map[string]*Node{Root: NewDirectory()},
	}
}

// Cwd 返回当前目录
func (s *Session) Cwd() string {
	return s.cwd
}

// Len 返回命名空间中的键数量（包含根目录）
func (s *Session) Len() int {
	return len(s.entries)
}

// Resolve 基于当前目录解析路径
func (s *Session) Resolve(p string) string {
	return Resolve(s.cwd, p)
}

// Lookup 按规范路径读取节点
func (s *Session) Lookup(p string) (*Node, bool) {
	n, ok := s.entries[p]
	return n, ok
}

// Paths 返回全部键，按字典序排列
func (s *Session) Paths() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Session) MakeDirectory(name string) (string, error) {
	if name == "" {
		return "", pathErr("mkdir", name, ErrNotFound)
	}
	p := s.Resolve(name)
	if _, ok := s.entries[p]; ok {
		return p, pathErr("mkdir", p, ErrExists)
	}
	s.entries[p] = NewDirectory()
	return p, nil
}

func (s *Session) ChangeDirectory(target string) error {
	switch target {
	case "..":
		s.cwd = s.nearestDirectory(s.cwd)
		return nil
	case Root:
		s.cwd = Root
		return nil
	case "":
		return pathErr("cd", target, ErrNotFound)
	}
	p := s.Resolve(target)
	if !s.entries[p].IsDir() {
		return pathErr("cd", p, ErrNotFound)
	}
	s.cwd = p
	return nil
}

// List 返回目标目录的直接子项；target 为空时列出当前目录
func (s *Session) List(target string) (string, []string, error) {
	dir := s.cwd
	if target != "" {
		dir = s.Resolve(target)
	}
	if !s.entries[dir].IsDir() {
		return dir, nil, pathErr("ls", dir, ErrNotFound)
	}
	var children []string
	for p := range s.entries {
		if IsChild(dir, p) {
			children = append(children, p)
		}
	}
	sort.Strings(children)
	return dir, children, nil
}

func (s *Session) ReadFile(name string) (string, error) {
	n, err := s.file("cat", name)
	if err != nil {
		return "", err
	}
	return n.Content, nil
}

// Search 返回包含 pattern 的行，保持原有顺序；空文件视为不存在
func (s *Session) Search(pattern, name string) (string, error) {
	n, err := s.file("grep", name)
	if err != nil {
		return "", err
	}
	if n.Content == "" {
		return "", pathErr("grep", s.Resolve(name), ErrNotFound)
	}
	var matched []string
	for _, line := range strings.Split(n.Content, "\n") {
		if strings.Contains(line, pattern) {
			matched = append(matched, line)
		}
	}
	return strings.Join(matched, "\n"), nil
}

func (s *Session) CreateEmpty(name string) (string, error) {
	if name == "" {
		return "", pathErr("touch", name, ErrNotFound)
	}
	p := s.Resolve(name)
	if err := s.checkParent("touch", p); err != nil {
		return p, err
	}
	if _, ok := s.entries[p]; ok {
		return p, pathErr("touch", p, ErrExists)
	}
	s.entries[p] = NewFile("")
	return p, nil
}

// WriteContent 解析 '<content>' > <path> 并覆盖写入目标文件，不存在时先创建
func (s *Session) WriteContent(raw string) (WriteResult, error) {
	content, target, err := ParseRedirect(raw)
	if err != nil {
		return WriteResult{}, pathErr("echo", "", err)
	}
	p := s.Resolve(target)
	res := WriteResult{Target: target, Path: p}
	if err := s.checkParent("echo", p); err != nil {
		return res, err
	}
	n, ok := s.entries[p]
	if ok && n.IsDir() {
		return res, pathErr("echo", p, ErrIsDirectory)
	}
	if !ok {
		n = NewFile("")
		s.entries[p] = n
		res.Created = true
	}
	n.Content = content
	return res, nil
}

func (s *Session) Move(src, dst string) error {
	return s.transfer("mv", src, dst, false)
}

func (s *Session) Copy(src, dst string) error {
	return s.transfer("cp", src, dst, true)
}

// Remove 仅删除精确匹配的键
func (s *Session) Remove(target string) error {
	if target == "" {
		return pathErr("rm", target, ErrNotFound)
	}
	p := s.Resolve(target)
	if p == Root {
		return pathErr("rm", p, ErrRoot)
	}
	if _, ok := s.entries[p]; !ok {
		return pathErr("rm", p, ErrNotFound)
	}
	delete(s.entries, p)
	s.fixCwd()
	return nil
}

func (s *Session) transfer(op, src, dst string, keep bool) error {
	if src == "" {
		return pathErr(op, src, ErrNotFound)
	}
	ps := s.Resolve(src)
	n, ok := s.entries[ps]
	if !ok {
		return pathErr(op, ps, ErrNotFound)
	}
	if dst == "" {
		return pathErr(op, dst, ErrNotFound)
	}
	pd := s.Resolve(dst)
	if pd == Root || (ps == Root && !keep) {
		return pathErr(op, Root, ErrRoot)
	}
	if ps == pd {
		return nil
	}
	if keep {
		s.entries[pd] = n.Clone()
	} else {
		s.entries[pd] = n
		delete(s.entries, ps)
	}
	s.fixCwd()
	return nil
}

func (s *Session) file(op, name string) (*Node, error) {
	if name == "" {
		return nil, pathErr(op, name, ErrNotFound)
	}
	p := s.Resolve(name)
	n, ok := s.entries[p]
	if !ok || !n.IsFile() {
		return nil, pathErr(op, p, ErrNotFound)
	}
	return n, nil
}

func (s *Session) checkParent(op, p string) error {
	parent := Parent(p)
	if !s.entries[parent].IsDir() {
		return pathErr(op, parent, ErrParentNotFound)
	}
	return nil
}

// fixCwd 当前目录被删除或被文件覆盖时回退到最近的祖先目录
func (s *Session) fixCwd() {
	if !s.entries[s.cwd].IsDir() {
		s.cwd = s.nearestDirectory(s.cwd)
	}
}

// nearestDirectory 向上查找仍然存在的祖先目录
func (s *Session) nearestDirectory(p string) string {
	for p != Root {
		p = Parent(p)
		if s.entries[p].IsDir() {
			return p
		}
	}
	return Root
}
