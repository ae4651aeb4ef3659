package cache

// orderList tracks insertion order for eviction. Reads do not reorder it.
type orderList[K comparable] struct {
	head  *orderNode[K]
	tail  *orderNode[K]
	nodes map[K]*orderNode[K]
	size  int
}

type orderNode[K comparable] struct {
	key        K
	prev, next *orderNode[K]
}

func newOrderList[K comparable]() *orderList[K] {
	head := &orderNode[K]{}
	tail := &orderNode[K]{}
	head.next = tail
	tail.prev = head

	return &orderList[K]{
		head:  head,
		tail:  tail,
		nodes: make(map[K]*orderNode[K]),
	}
}

// PushFront records key as the newest entry. A key already present is
// moved to the front.
func (l *orderList[K]) PushFront(key K) {
	if node, exists := l.nodes[key]; exists {
		l.removeNode(node)
		l.insertFront(node)
		return
	}

	node := &orderNode[K]{key: key}
	l.nodes[key] = node
	l.insertFront(node)
	l.size++
}

// Remove removes a key from the list
func (l *orderList[K]) Remove(key K) {
	if node, exists := l.nodes[key]; exists {
		l.removeNode(node)
		delete(l.nodes, key)
		l.size--
	}
}

// RemoveOldest removes and returns the oldest key
func (l *orderList[K]) RemoveOldest() (K, bool) {
	var zero K
	if l.size == 0 {
		return zero, false
	}

	oldest := l.tail.prev
	l.removeNode(oldest)
	delete(l.nodes, oldest.key)
	l.size--

	return oldest.key, true
}

// Size returns the current size of the list
func (l *orderList[K]) Size() int {
	return l.size
}

func (l *orderList[K]) insertFront(node *orderNode[K]) {
	node.next = l.head.next
	node.prev = l.head
	l.head.next.prev = node
	l.head.next = node
}

func (l *orderList[K]) removeNode(node *orderNode[K]) {
	node.prev.next = node.next
	node.next.prev = node.prev
}
