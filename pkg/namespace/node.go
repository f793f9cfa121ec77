package namespace

import (
	"encoding/json"
	"fmt"
)

// Kind 区分目录与文件
type Kind int

const (
	KindDirectory Kind = iota
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node 是命名空间中某个路径上存放的值
type Node struct {
	Kind    Kind
	Content string
}

// NewDirectory 创建目录节点
func NewDirectory() *Node {
	return &Node{Kind: KindDirectory}
}

// NewFile 创建文件节点
func NewFile(content string) *Node {
	return &Node{Kind: KindFile, Content: content}
}

func (n *Node) IsDir() bool {
	return n != nil && n.Kind == KindDirectory
}

func (n *Node) IsFile() bool {
	return n != nil && n.Kind == KindFile
}

// Clone 返回独立副本
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}

// wireNode 对应快照中的节点格式：目录为 {}，文件为 {"content": "..."}
type wireNode struct {
	Content *string `json:"content,omitempty"`
}

func (n Node) MarshalJSON() ([]byte, error) {
	var w wireNode
	if n.Kind == KindFile {
		content := n.Content
		w.Content = &content
	}
	return json.Marshal(w)
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Content == nil {
		*n = Node{Kind: KindDirectory}
		return nil
	}
	*n = Node{Kind: KindFile, Content: *w.Content}
	return nil
}
