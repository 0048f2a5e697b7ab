// Package nickname generates display names like "외제차를 뽑은 꼬봉" for accounts that have none.
package nickname

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

var adjectives = []string{
	"용감한", "수줍은", "졸린", "배고픈", "신나는", "느긋한", "똑똑한", "부지런한",
	"명랑한", "엉뚱한", "차분한", "씩씩한", "다정한", "호기심 많은", "꿈꾸는", "노래하는",
	"춤추는", "외제차를 뽑은", "커피를 쏟은", "코딩하는", "산책하는", "웃고 있는", "반짝이는", "수영하는",
}

var animals = []string{
	"호랑이", "고양이", "강아지", "다람쥐", "판다", "여우", "부엉이", "거북이",
	"수달", "펭귄", "햄스터", "코알라", "토끼", "고래", "사자", "기린",
	"너구리", "알파카", "돌고래", "꼬봉", "참새", "두더지", "오리", "미어캣",
}

type Generator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	numbered bool
}

type Option func(*Generator)

// WithNumber appends a four digit suffix, which makes collisions rarer.
func WithNumber() Option {
	return func(g *Generator) {
		g.numbered = true
	}
}

func WithSource(src rand.Source) Option {
	return func(g *Generator) {
		g.rng = rand.New(src)
	}
}

func New(opts ...Option) *Generator {
	g := &Generator{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	name := adjectives[g.rng.IntN(len(adjectives))] + " " + animals[g.rng.IntN(len(animals))]
	if g.numbered {
		name = fmt.Sprintf("%s %04d", name, g.rng.IntN(10000))
	}
	return name
}
