package tracking

import "github.com/phobologic/trackscan/internal/model"

// noArg marks an unused positional slot in a convention.
const noArg = -1

// convention describes where a library puts the event name, the property
// bag, and the subject of a tracking call.
type convention struct {
	// Positional slots on the outer call.
	eventArg    int
	propsArg    int
	identityArg int

	// Keyword alternatives on the outer call, tried before positional slots.
	eventKeyword string
	propsKeyword string

	// identity is the synthetic property injected for the call's subject.
	identity string
	// literalIdentity injects identity only for a truthy literal subject.
	literalIdentity bool

	// ctor names a constructor call expected as the first positional
	// argument; the ctor* keywords are read from its arguments.
	ctor                string
	ctorEventKeyword    string
	ctorPropsKeyword    string
	ctorIdentityKeyword string
	// ctorKeywordProps turns every other constructor keyword into a property.
	ctorKeywordProps bool

	// anonymizable honors $process_person_profile=False by dropping identity.
	anonymizable bool
	// expandSet flattens $set and $set_once into dotted keys.
	expandSet bool
}

const (
	baseEventCtor       = "BaseEvent"
	structuredEventCtor = "StructuredEvent"
	trackerObject       = "tracker"

	personProfileKey = "$process_person_profile"
)

var setKeys = map[string]struct{}{
	"$set":      {},
	"$set_once": {},
}

// snowplowBuilders are direct functions that build or send struct events.
var snowplowBuilders = map[string]struct{}{
	"trackStructEvent": {},
	"buildStructEvent": {},
}

const (
	snowplowDispatcher = "snowplow"
	snowplowStructOp   = "trackStructEvent"
)

// methodSources maps receiver.method pairs to their library.
var methodSources = map[[2]string]model.Source{
	{"analytics", "track"}:        model.Segment,
	{"mp", "track"}:               model.Mixpanel,
	{"rudder_analytics", "track"}: model.Rudderstack,
	{"posthog", "capture"}:        model.PostHog,
}

var conventions = map[model.Source]convention{
	model.Segment: {
		eventArg:    1,
		propsArg:    2,
		identityArg: 0,
		identity:    "user_id",
	},
	model.Rudderstack: {
		eventArg:    1,
		propsArg:    2,
		identityArg: 0,
		identity:    "user_id",
	},
	model.Mixpanel: {
		eventArg:    1,
		propsArg:    2,
		identityArg: 0,
		identity:    "distinct_id",
	},
	model.PostHog: {
		eventArg:        1,
		propsArg:        2,
		identityArg:     0,
		eventKeyword:    "event",
		propsKeyword:    "properties",
		identity:        "distinct_id",
		literalIdentity: true,
		anonymizable:    true,
		expandSet:       true,
	},
	model.Amplitude: {
		eventArg:            noArg,
		propsArg:            noArg,
		identityArg:         noArg,
		identity:            "user_id",
		ctor:                baseEventCtor,
		ctorEventKeyword:    "event_type",
		ctorPropsKeyword:    "event_properties",
		ctorIdentityKeyword: "user_id",
	},
	model.Snowplow: {
		eventArg:         noArg,
		propsArg:         noArg,
		identityArg:      noArg,
		ctor:             structuredEventCtor,
		ctorEventKeyword: "action",
		ctorKeywordProps: true,
	},
	model.Custom: {
		eventArg:    0,
		propsArg:    1,
		identityArg: noArg,
	},
}

// renamedKeywords maps constructor keywords that dodge Python reserved
// words back to their property names.
var renamedKeywords = map[string]string{
	"property_": "property",
}
