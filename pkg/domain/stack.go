package domain

import "dastgah/pkg/frame"

// Stack is the word stack of one execution unit. The generated allocation
// stub pushes its return address on top before entering the runtime.
type Stack struct {
	a []frame.Addr
	l int
}

// NewStack creates a new stack instance
func NewStack(elm ...frame.Addr) *Stack {
	stack := Stack{
		a: make([]frame.Addr, 0),
		l: 0,
	}

	for _, e := range elm {
		stack.l++
		stack.a = append(stack.a, e)
	}

	return &stack
}

// Push adds a word to the top of the stack
func (s *Stack) Push(elm frame.Addr) {
	s.l++
	s.a = append(s.a, elm)
}

// Pop removes and returns the top word of the stack
func (s *Stack) Pop() frame.Addr {
	if s.l < 1 {
		return 0
	}

	s.l--
	elm := s.a[s.l]
	s.a = s.a[:s.l]

	return elm
}

// Top returns the top word without removing it
func (s *Stack) Top() frame.Addr {
	if s.l < 1 {
		return 0
	}

	return s.a[s.l-1]
}

// Get the size of the stack
func (s *Stack) Size() int {
	return s.l
}
