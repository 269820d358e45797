package strata

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

// Module wires a cohesive set of resources and systems into an App.
type Module interface {
	Install(app *App, cmd *Commands)
}

// App owns the frame loop: an ordered list of stages, the systems scheduled
// into them, and the resources those systems borrow. Everything runs on the
// goroutine that calls Run or Step; systems hand slow work to worker pools
// and poll for the results instead of blocking the frame.
type App struct {
	modules   []Module
	installed int
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any
	quitting  bool
}

func NewApp() *App {
	app := &App{
		stages:    []Stage{Prelude, PreUpdate, Update, PostUpdate, Finale},
		systems:   make(map[string][]systemFn),
		resources: make(map[reflect.Type]any),
	}
	for _, stage := range app.stages {
		app.systems[stage.Name] = make([]systemFn, 0)
	}
	return app
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

// UseModules queues modules for installation. They install on the first Step
// or Run, in the order they were added.
func (app *App) UseModules(modules ...Module) *App {
	app.modules = append(app.modules, modules...)
	return app
}

func (app *App) build() {
	for _, module := range app.modules[app.installed:] {
		module.Install(app, app.Commands())
	}
	app.installed = len(app.modules)
}

// Step runs every stage once, in order.
func (app *App) Step() {
	app.build()
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
	}
}

// Run steps the app until the context is cancelled or a system calls
// Commands.Quit. The frame in progress always finishes.
func (app *App) Run(ctx context.Context) {
	app.build()
	for !app.quitting {
		select {
		case <-ctx.Done():
			return
		default:
		}
		app.Step()
	}
}

func (app *App) quit() {
	app.quitting = true
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType == nil || resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("Resources must be pointers, got %v", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

func (app *App) callSystem(system systemFn) {
	app.callSystemInternal(system)
}

var typeOfCommands = reflect.TypeOf(Commands{})

// callSystemInternal resolves a system's parameters and invokes it. Pointer
// parameters resolve to the resource of the pointed-to type, interface
// parameters to the first installed resource implementing them, and
// *Commands to the app's command facade.
func (app *App) callSystemInternal(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	if systemType == nil || systemType.Kind() != reflect.Func {
		panic(fmt.Sprintf("Systems must be functions, got %v", systemType))
	}

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)

		switch {
		case argType.Kind() == reflect.Pointer && argType.Elem() == typeOfCommands:
			args[i] = reflect.ValueOf(app.Commands())
		case argType.Kind() == reflect.Pointer:
			resource, ok := app.resources[argType.Elem()]
			if !ok {
				failResolution(systemValue, systemType, argType)
			}
			args[i] = reflect.ValueOf(resource)
		case argType.Kind() == reflect.Interface:
			resource, ok := app.resourceImplementing(argType)
			if !ok {
				failResolution(systemValue, systemType, argType)
			}
			args[i] = reflect.ValueOf(resource)
		default:
			failResolution(systemValue, systemType, argType)
		}
	}
	systemValue.Call(args)
}

// resourceImplementing scans for a resource satisfying an interface. With
// more than one candidate the pick is unspecified, so interface parameters
// only make sense for single-implementation contracts like Logger or
// MeshSink.
func (app *App) resourceImplementing(ifaceType reflect.Type) (any, bool) {
	for _, resource := range app.resources {
		if reflect.TypeOf(resource).Implements(ifaceType) {
			return resource, true
		}
	}
	return nil, false
}

func failResolution(systemValue reflect.Value, systemType, argType reflect.Type) {
	panic(fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
		runtime.FuncForPC(systemValue.Pointer()).Name(),
		fmt.Sprint(systemType),
		fmt.Sprint(argType),
	))
}
