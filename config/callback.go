package config

// Callbacks invoked once the application config is built. Packages that need
// global settings (logger, address formatting) register here in init.
type ConfigCallback[T any] struct {
	callbacks []func(T)
}

func (cc *ConfigCallback[T]) AddCallback(callback func(T)) {
	cc.callbacks = append(cc.callbacks, callback)
}

func (cc ConfigCallback[T]) Call(config T) {
	for _, cb := range cc.callbacks {
		cb(config)
	}
}
