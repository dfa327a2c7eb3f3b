package service

import (
	"InstaCap/internal/pkg/consts"
	"math/rand/v2"
)

// 离线模板库：语气 -> 平台 -> 文案
var captionTemplates = map[string]map[string][]string{
	consts.ToneCasual: {
		consts.PlatformInstagram: {
			"Living my best life ✨ #goodvibes #blessed #lifestyle #happiness #grateful",
			"Just another beautiful day 🌅 #sunshine #happy #blessed #morningvibes #positiveenergy",
			"Chasing dreams and catching sunsets 🌇 #adventure #sunset #dreams #wanderlust #explore",
			"Making memories that last forever 📸 #memories #photooftheday #instagood #bestmoments #life",
			"Good vibes only! 🌟 #goodvibes #positivity #smile #happiness #energy",
			"Creating my own sunshine ☀️ #sunshine #positivity #selfmade #inspiration #motivation",
		},
		consts.PlatformFacebook: {
			"Having an amazing time with friends! What a perfect day to create lasting memories.",
			"Grateful for moments like these. Life is beautiful when you're surrounded by good people!",
			"Sometimes you just need to stop and appreciate the little things that make life wonderful.",
			"Today reminded me why I love spending time with the people who matter most.",
			"Life's best moments happen when you least expect them. So blessed!",
			"Perfect weather, perfect company, perfect day. Couldn't ask for more!",
		},
		consts.PlatformTwitter: {
			"Perfect moment captured ✨ #life #perfect #blessed",
			"When life gives you good vibes 🌟 #goodvibes #blessed",
			"Simple pleasures, big smiles 😊 #happiness #simple",
			"Living in the moment 💫 #present #mindful #life",
			"Today's mood: grateful 🙏 #grateful #blessed #mood",
			"Small moments, big feelings ❤️ #feelings #moments #life",
		},
	},
	consts.ToneProfessional: {
		consts.PlatformInstagram: {
			"Excellence in every detail. #professional #success #growth #leadership #teamwork",
			"Building tomorrow, one step at a time. #leadership #innovation #future #progress #vision",
			"Committed to delivering outstanding results. #teamwork #excellence #results #dedication #success",
			"Innovation drives everything we do. #innovation #technology #business #growth #forward",
			"Proud of what we've accomplished together. #team #achievement #success #collaboration #proud",
			"Setting new standards of excellence. #excellence #standards #quality #professional #goals",
		},
		consts.PlatformLinkedIn: {
			"Proud to share this milestone with my amazing team. Together, we're building something extraordinary.",
			"Innovation happens when great minds collaborate. Grateful to work with such talented professionals.",
			"Grateful for the opportunity to work on meaningful projects that make a difference.",
			"Success is a team sport. Thank you to everyone who made this possible.",
			"Excited to announce our latest achievement. Hard work and dedication always pay off.",
			"Learning and growing every day. The journey of professional development never ends.",
		},
	},
	consts.ToneFunny: {
		consts.PlatformInstagram: {
			"Me pretending I have my life together 😂 #adulting #help #relatable #funny #life",
			"Current mood: 99% coffee, 1% human ☕ #mood #relatable #coffee #monday #tired",
			"Plot twist: I'm actually just winging it 🤷‍♂️ #life #truth #funny #adulting #relatable",
			"When you realize being an adult is just googling everything 📱 #adulting #google #truth #funny",
			"My life is like a romantic comedy, except there's no romance and it's not funny 😅 #life #reality #mood",
			"I followed my heart and it led me to the fridge 🍕 #food #heart #truth #hungry #relatable",
		},
	},
	consts.ToneInspirational: {
		consts.PlatformInstagram: {
			"Every sunrise is a new opportunity to shine ✨ #motivation #inspiration #sunrise #opportunity #positive",
			"Believe in yourself, magic happens when you do 🌟 #dreams #believe #magic #inspiration #motivation",
			"Your potential is limitless. Never stop growing 🌱 #growth #mindset #potential #inspiration #nevergiveup",
			"Turn your wounds into wisdom and your pain into power 💪 #strength #wisdom #growth #overcome #inspire",
			"The best view comes after the hardest climb ⛰️ #perseverance #success #journey #climb #view",
			"Be yourself; everyone else is already taken 💫 #authentic #beyourself #unique #inspiration #selfworth",
		},
	},
	consts.ToneTrendy: {
		consts.PlatformInstagram: {
			"That main character energy ✨ #maincharacter #energy #confidence #trending #aesthetic",
			"Plot armor activated 🛡️ #plotarmor #confidence #unstoppable #trending #energy",
			"Roman Empire? More like my empire 👑 #empire #confidence #trending #aesthetic #vibes",
			"Living my truth, serving looks 💅 #truth #looks #serving #confidence #aesthetic",
			"No thoughts, head empty, just vibes 🧠 #vibes #trending #mood #aesthetic #energy",
			"Caught in 4K being amazing 📸 #caught4k #amazing #confidence #trending #iconic",
		},
	},
}

// templatePool 语气+平台 -> 该语气的 instagram -> casual/instagram
func templatePool(tone, platform string) []string {
	set, ok := captionTemplates[tone]
	if !ok {
		set = captionTemplates[consts.ToneCasual]
	}
	if pool, ok := set[platform]; ok && len(pool) > 0 {
		return pool
	}
	if pool, ok := set[consts.PlatformInstagram]; ok && len(pool) > 0 {
		return pool
	}
	return captionTemplates[consts.ToneCasual][consts.PlatformInstagram]
}

// sampleTemplates 无放回抽取 count 条，count 超过模板数时循环使用
func sampleTemplates(pool []string, count int) []string {
	perm := rand.Perm(len(pool))
	out := make([]string, count)
	for i := range out {
		out[i] = pool[perm[i%len(perm)]]
	}
	return out
}
