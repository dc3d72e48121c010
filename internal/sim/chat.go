package sim

import (
	"math/rand"

	"github.com/vovakirdan/autododge/internal/core"
)

var (
	chatUsers = []string{
		"NeonNinja", "CyberWolf", "PixelPusher", "GlitchGamer", "RetroRex",
		"VaporWave", "SynthLord", "BitMaster", "CodeCrusher", "StreamQueen",
	}
	chatColors = []core.RGB{core.NeonCyan, core.NeonMagenta, core.NeonGreen, core.NeonYellow}

	chatNormal = []string{"Pog", "Nice", "Clean", "Smooth", "Music is vibe", "Hi youtube", "First"}
	chatHype   = []string{"OMG", "INSANE", "GOD GAMER", "HOW???", "CLIP IT", "POGCHAMP", "!!!"}
	chatScared = []string{"monkaS", "Close one", "Sweating", "Careful!", "Heart rate up"}
)

// ChatMessage is one line of the fake viewer chat.
type ChatMessage struct {
	User  string
	Color core.RGB
	Text  string
	Slide int // Horizontal offset, animates from -50 to 0
	Alpha int // Animates from 0 to 255
	Life  int // Frames until the message expires
}

// ChatFeed is the bounded, animated viewer chat.
type ChatFeed struct {
	messages []ChatMessage
	rng      *rand.Rand
	timer    int
	next     int // Frames until the next automatic message

	max    int
	life   int
	minGap int
	maxGap int
}

// NewChatFeed creates an empty feed. The first automatic message arrives on the first update.
func NewChatFeed(rng *rand.Rand, t Tuning) *ChatFeed {
	return &ChatFeed{
		rng:    rng,
		max:    t.ChatMax,
		life:   t.ChatLife,
		minGap: t.ChatIntervalMin,
		maxGap: t.ChatIntervalMax,
	}
}

// Add posts a message whose text matches the mood. The oldest message is
// evicted once the feed is full.
func (c *ChatFeed) Add(mood Mood) {
	pool := chatNormal
	switch mood {
	case MoodHype:
		pool = chatHype
	case MoodScared:
		pool = chatScared
	}

	msg := ChatMessage{
		User:  chatUsers[c.rng.Intn(len(chatUsers))],
		Color: chatColors[c.rng.Intn(len(chatColors))],
		Slide: -50,
		Life:  c.life,
	}
	msg.Text = pool[c.rng.Intn(len(pool))]

	c.messages = append(c.messages, msg)
	if len(c.messages) > c.max {
		c.messages = c.messages[len(c.messages)-c.max:]
	}
}

// Update posts an automatic message when due, animates every message and
// drops the expired ones.
func (c *ChatFeed) Update(mood Mood) {
	c.timer++
	if c.timer >= c.next {
		c.timer = 0
		c.next = c.minGap + c.rng.Intn(c.maxGap-c.minGap+1)
		c.Add(mood)
	}

	alive := c.messages[:0]
	for _, m := range c.messages {
		if m.Slide < 0 {
			m.Slide += 5
		}
		if m.Alpha < 255 {
			m.Alpha += 15
			if m.Alpha > 255 {
				m.Alpha = 255
			}
		}
		m.Life--
		if m.Life > 0 {
			alive = append(alive, m)
		}
	}
	c.messages = alive
}

// Messages returns the live messages, oldest first.
func (c *ChatFeed) Messages() []ChatMessage {
	return c.messages
}
