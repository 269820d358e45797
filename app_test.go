package strata

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

func TestApp_addResources(t *testing.T) {
	app := NewApp()

	// Add a resource
	resource1 := NewMockResource1("Resource1")
	app.addResources(resource1)

	// Check that the resource was added
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	// Expect panic when trying to add the same type of resource again
	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1) // Try adding resource1 again, should panic
	})

	// Add a resource
	resource2 := NewMockResource2("Resource2")
	app.addResources(resource2)

	// Check that the resource was added
	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem(), "Resource2 should be in resources map.")
}

func TestApp_addResources_RejectsValues(t *testing.T) {
	app := NewApp()

	require.Panics(t, func() {
		app.addResources(MockResource1{name: "by value"})
	})
}

func TestApp_SystemInjection(t *testing.T) {
	app := NewApp()
	resource := NewMockResource1("injected")
	app.addResources(resource)

	var got *MockResource1
	var gotCmd *Commands
	app.UseSystem(System(func(r *MockResource1, cmd *Commands) {
		got = r
		gotCmd = cmd
	}))

	app.Step()

	require.Same(t, resource, got, "The system should receive the installed resource pointer.")
	require.NotNil(t, gotCmd)
	assert.Same(t, app, gotCmd.app)
}

func TestApp_InterfaceInjection(t *testing.T) {
	app := NewApp()
	logger := NewDefaultLogger("test", false)
	app.addResources(logger)

	var got Logger
	app.UseSystem(System(func(l Logger) {
		got = l
	}))

	app.Step()

	require.Same(t, logger, got, "Interface parameters should resolve to the implementing resource.")
}

func TestApp_UnresolvedDependencyPanics(t *testing.T) {
	app := NewApp()
	app.UseSystem(System(func(r *MockResource1) {}))

	require.Panics(t, func() {
		app.Step()
	})
}

func TestApp_StageOrder(t *testing.T) {
	app := NewApp()

	var order []string
	record := func(name string) systemScheduleBuilder {
		return System(func() { order = append(order, name) })
	}

	// Registered out of order on purpose.
	app.UseSystem(record("finale").InStage(Finale))
	app.UseSystem(record("update"))
	app.UseSystem(record("prelude").InStage(Prelude))
	app.UseSystem(record("post").InStage(PostUpdate))
	app.UseSystem(record("pre").InStage(PreUpdate))

	app.Step()

	assert.Equal(t, []string{"prelude", "pre", "update", "post", "finale"}, order)
}

func TestApp_UseStage(t *testing.T) {
	app := NewApp()
	warmup := Stage{Name: "Warmup"}
	app.UseStage(warmup, BeforeStage(Update))

	var order []string
	app.UseSystem(System(func() { order = append(order, "warmup") }).InStage(warmup))
	app.UseSystem(System(func() { order = append(order, "update") }))

	app.Step()

	assert.Equal(t, []string{"warmup", "update"}, order)

	require.Panics(t, func() {
		app.UseStage(warmup, AfterStage(Update))
	}, "Inserting the same stage twice should panic.")
}

func TestApp_UnknownStagePanics(t *testing.T) {
	app := NewApp()

	require.Panics(t, func() {
		app.UseSystem(System(func() {}).InStage(Stage{Name: "Nope"}))
	})
}

func TestApp_Quit(t *testing.T) {
	app := NewApp()

	frames := 0
	app.UseSystem(System(func(cmd *Commands) {
		frames++
		if frames == 3 {
			cmd.Quit()
		}
	}))

	app.Run(context.Background())

	assert.Equal(t, 3, frames, "Run should stop at the end of the frame that called Quit.")
}

func TestApp_RunHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	app := NewApp()
	frames := 0
	app.UseSystem(System(func() {
		frames++
		if frames == 2 {
			cancel()
		}
	}))

	app.Run(ctx)

	assert.Equal(t, 2, frames)
}

func TestApp_ModulesInstallOnce(t *testing.T) {
	app := NewApp()
	module := &MockModule{}
	app.UseModules(module)

	app.Step()
	app.Step()

	assert.Equal(t, 1, module.installs, "A module must install exactly once across steps.")
}
