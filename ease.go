package twig

import (
	"strings"

	"github.com/tanema/gween/ease"
)

// easings maps GSAP-style ease ids to gween easing functions. powerN
// follows GSAP: power1 = quad, power2 = cubic, power3 = quart, power4 = quint.
var easings = map[string]ease.TweenFunc{
	"linear": ease.Linear,
	"none":   ease.Linear,

	"power1.in": ease.InQuad, "power1.out": ease.OutQuad, "power1.inout": ease.InOutQuad,
	"power2.in": ease.InCubic, "power2.out": ease.OutCubic, "power2.inout": ease.InOutCubic,
	"power3.in": ease.InQuart, "power3.out": ease.OutQuart, "power3.inout": ease.InOutQuart,
	"power4.in": ease.InQuint, "power4.out": ease.OutQuint, "power4.inout": ease.InOutQuint,

	"sine.in": ease.InSine, "sine.out": ease.OutSine, "sine.inout": ease.InOutSine,
	"expo.in": ease.InExpo, "expo.out": ease.OutExpo, "expo.inout": ease.InOutExpo,
	"circ.in": ease.InCirc, "circ.out": ease.OutCirc, "circ.inout": ease.InOutCirc,
	"back.in": ease.InBack, "back.out": ease.OutBack, "back.inout": ease.InOutBack,

	"elastic.in": ease.InElastic, "elastic.out": ease.OutElastic, "elastic.inout": ease.InOutElastic,
	"bounce.in": ease.InBounce, "bounce.out": ease.OutBounce, "bounce.inout": ease.InOutBounce,
}

// EaseByName returns the easing function for id (case-insensitive, e.g.
// "power2.in", "bounce.out", "elastic.inOut").
func EaseByName(id string) (ease.TweenFunc, bool) {
	fn, ok := easings[strings.ToLower(id)]
	return fn, ok
}

// easeOrLinear resolves id, falling back to linear with a warning.
func easeOrLinear(id string) ease.TweenFunc {
	if id == "" {
		return ease.Linear
	}
	fn, ok := EaseByName(id)
	if !ok {
		logger.Warn("unknown ease, using linear", "ease", id)
		return ease.Linear
	}
	return fn
}
