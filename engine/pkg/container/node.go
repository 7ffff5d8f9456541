// Package container
// @Title  挂载节点
// @Description  对象池使用的树形容器,按名称组织子节点并记录挂载的对象
// @Author  yr  2026/10/16
// @Update  yr  2026/10/16
package container

import (
	"strings"
	"sync"

	"github.com/njtc406/emberpool/engine/pkg/objectpool"
)

// Node 树形容器节点
//
// 挂载信息会被监控接口在其他goroutine中读取,所以需要加锁
type Node struct {
	mu       sync.RWMutex
	name     string
	parent   *Node
	children map[string]*Node
	order    []*Node
	attached map[*objectpool.Tag]objectpool.IInstance
}

func NewNode(name string) *Node {
	return &Node{
		name:     name,
		children: make(map[string]*Node),
		attached: make(map[*objectpool.Tag]objectpool.IInstance),
	}
}

func (n *Node) GetName() string {
	return n.name
}

// GetPath 从根节点开始的完整路径
func (n *Node) GetPath() string {
	var names []string
	for cur := n; cur != nil; cur = cur.parent {
		names = append(names, cur.name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, "/")
}

func (n *Node) GetParent() *Node {
	return n.parent
}

func (n *Node) Attach(inst objectpool.IInstance) {
	n.mu.Lock()
	n.attached[inst.PoolTag()] = inst
	n.mu.Unlock()
}

func (n *Node) Detach(inst objectpool.IInstance) {
	n.mu.Lock()
	delete(n.attached, inst.PoolTag())
	n.mu.Unlock()
}

// CreateChild 每次都创建新的子节点,同名节点可以并存
//
// 同名的对象池各自拥有独立的挂载节点
func (n *Node) CreateChild(name string) objectpool.IContainer {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.newChild(name)
}

// Child 返回第一个同名子节点,不存在时创建
func (n *Node) Child(name string) *Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	if child, ok := n.children[name]; ok {
		return child
	}
	return n.newChild(name)
}

// newChild 必须持有写锁
func (n *Node) newChild(name string) *Node {
	child := NewNode(name)
	child.parent = n
	if _, ok := n.children[name]; !ok {
		n.children[name] = child
	}
	n.order = append(n.order, child)
	return child
}

// Find 返回第一个同名子节点
func (n *Node) Find(name string) (*Node, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	child, ok := n.children[name]
	return child, ok
}

// FindAll 按创建顺序返回所有同名子节点
func (n *Node) FindAll(name string) []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	var nodes []*Node
	for _, child := range n.order {
		if child.name == name {
			nodes = append(nodes, child)
		}
	}
	return nodes
}

// Children 按创建顺序返回子节点
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	children := make([]*Node, len(n.order))
	copy(children, n.order)
	return children
}

func (n *Node) Contains(inst objectpool.IInstance) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.attached[inst.PoolTag()]
	return ok
}

func (n *Node) Count() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.attached)
}

// CountAll 包含所有子节点的挂载数量
func (n *Node) CountAll() int {
	total := n.Count()
	for _, child := range n.Children() {
		total += child.CountAll()
	}
	return total
}

// Walk 深度优先遍历,fn返回false时停止
func (n *Node) Walk(fn func(node *Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, child := range n.Children() {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}
