package nostr

// KindHandlers maps a handler name ("kind/9000", "filter", "universal")
// to its handler. Populated once at startup, read-only afterwards.
var KindHandlers map[string]KindHandler

type KindWriter func(messageType string, params ...interface{})
type KindReader func() ([]byte, error)

type KindHandler func(read KindReader, write KindWriter)

func init() {
	KindHandlers = map[string]KindHandler{}
}

func RegisterHandler(name string, handler KindHandler) {
	KindHandlers[name] = handler
}

func GetHandler(name string) KindHandler {
	handler, ok := KindHandlers[name]
	if !ok {
		return nil
	}

	return handler
}

func ClearHandlers() {
	KindHandlers = make(map[string]KindHandler)
}
