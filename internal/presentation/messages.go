package presentation

import "strings"

// messageCategory selects a template set for the youngest speakers.
type messageCategory string

const (
	msgTooSoft       messageCategory = "too_soft"
	msgJustRight     messageCategory = "just_right"
	msgTooLoud       messageCategory = "too_loud"
	msgCelebration   messageCategory = "celebration"
	msgEncouragement messageCategory = "encouragement"
)

// Templates may reference {name} and {topic}; both are replaced when known
// and stripped when not.
var messageTemplates = map[messageCategory][]string{
	msgTooSoft: {
		"Try Lion Voice! 🦁 ROAR so everyone can hear you!",
		"Can you be louder like a big dinosaur? 🦖",
		"Let's wake up the sleepy owl with your voice! 🦉",
		"Use your superhero voice, {name}! 🦸",
		"Speak up like a singing bird! 🐦",
	},
	msgJustRight: {
		"Perfect voice! You sound amazing! ⭐",
		"Goldilocks would say your voice is JUST RIGHT! 🐻",
		"Your voice is as bright as sunshine! ☀️",
		"Wow, {name}! You spoke like a star! 🌟",
		"What a wonderful speaker you are! 🎉",
	},
	msgTooLoud: {
		"Wow, you're loud! Let's try indoor voice! 🏠",
		"Shh, we don't want to scare the bunny! 🐰",
		"Great energy! Now let's be a little gentler 🌸",
		"You're powerful! Let's use our gentle giant voice 🐘",
	},
	msgCelebration: {
		"You did it! Amazing job speaking about {topic}! 🎉",
		"Superstar! You spoke so well! 🌟",
		"Hooray! What a great speaker you are! 🎊",
		"Give yourself a big hug! You were wonderful! 🤗",
		"You're a speaking champion, {name}! 🏆",
	},
	msgEncouragement: {
		"You're doing great! Keep trying! 💪",
		"Every speaker practices! You're learning! 📚",
		"I believe in you, {name}! Try again! 🌈",
		"You're getting better every time! 🚀",
	},
}

// expand fills the {name} and {topic} placeholders. Unknown values collapse
// together with their preceding separator so the sentence still reads.
func expand(tmpl, name, topic string) string {
	if name == "" {
		tmpl = strings.ReplaceAll(tmpl, ", {name}", "")
		tmpl = strings.ReplaceAll(tmpl, " {name}", "")
	}
	if topic == "" {
		tmpl = strings.ReplaceAll(tmpl, " about {topic}", "")
		tmpl = strings.ReplaceAll(tmpl, " {topic}", "")
	}
	return strings.NewReplacer("{name}", name, "{topic}", topic).Replace(tmpl)
}

// message picks one template from the category using the builder's pick
// function and expands it.
func (b *Builder) message(cat messageCategory, name, topic string) string {
	templates := messageTemplates[cat]
	if len(templates) == 0 {
		templates = messageTemplates[msgEncouragement]
	}
	return expand(templates[b.pick(len(templates))], name, topic)
}
