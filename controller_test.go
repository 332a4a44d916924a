package formbind_test

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/formbind"
	"github.com/reoring/formbind/bindmap"
	"github.com/reoring/formbind/dom"
	"github.com/reoring/formbind/rules"
)

// countingRegistry wraps the stock input descriptor and counts pushes per element.
func countingRegistry(counts map[formbind.Element]int) *formbind.Registry {
	std, _ := bindmap.Standard().Lookup("INPUT")
	return formbind.NewRegistry().Register("input", formbind.Descriptor{
		Events: std.Events,
		SetValue: func(el formbind.Element, v any) error {
			counts[el]++
			return std.SetValue(el, v)
		},
	})
}

func TestController_TextFieldScenario(t *testing.T) {
	m := formbind.New(map[string]any{"name": ""}, formbind.WithRegistry(bindmap.Standard()))
	in := dom.Input("text")

	c, err := formbind.BindField(m, in, "name", formbind.FieldOptions{Validate: nonEmpty})
	require.NoError(t, err)
	assert.Equal(t, formbind.Bound, c.State())
	assert.Equal(t, "bound", c.State().String())
	assert.NotEmpty(t, c.ID())
	assert.Equal(t, map[string]string{"type": "text", "name": "name", "data-field-path": "name"}, in.Attrs())

	in.Change("")
	assert.Equal(t, "required", m.ErrorAt("name"))
	assert.False(t, m.IsDataValid())
	assert.True(t, in.HasAttr(formbind.AttrInvalid))

	in.Change("Ada")
	assert.Equal(t, "Ada", m.GetData("name"))
	assert.Equal(t, false, m.ErrorAt("name"))
	assert.True(t, m.IsDataValid())
	assert.False(t, in.HasAttr(formbind.AttrInvalid))
}

func TestController_StampsLastSegmentAsName(t *testing.T) {
	m := formbind.New(map[string]any{"phones": map[string]any{"work": []any{"1"}}}, formbind.WithRegistry(bindmap.Standard()))
	in := dom.Input("tel")
	_, err := formbind.BindField(m, in, "phones.work.0", formbind.FieldOptions{})
	require.NoError(t, err)

	name, _ := in.Attr(formbind.AttrName)
	assert.Equal(t, "0", name)
	path, _ := in.Attr(formbind.AttrFieldPath)
	assert.Equal(t, "phones.work.0", path)
	assert.Equal(t, "1", in.Value())

	in.Change("5551212")
	assert.Equal(t, map[string]any{"work": []any{"5551212"}}, m.GetData("phones"))
}

func TestController_NoEchoAndSiblingSync(t *testing.T) {
	counts := map[formbind.Element]int{}
	m := formbind.New(map[string]any{"name": "", "other": ""}, formbind.WithRegistry(countingRegistry(counts)))
	a, b, o := dom.Input("text"), dom.Input("text"), dom.Input("text")

	var origins []string
	m.Watch(func(ev formbind.ChangeEvent) { origins = append(origins, ev.Origin) })

	ca, err := formbind.BindField(m, a, "name", formbind.FieldOptions{})
	require.NoError(t, err)
	_, err = formbind.BindField(m, b, "name", formbind.FieldOptions{})
	require.NoError(t, err)
	_, err = formbind.BindField(m, o, "other", formbind.FieldOptions{})
	require.NoError(t, err)
	assert.Equal(t, map[formbind.Element]int{a: 1, b: 1, o: 1}, counts)

	a.Change("x")
	assert.Equal(t, "x", m.GetData("name"))
	assert.Equal(t, 1, counts[a], "originating element must not receive its own echo")
	assert.Equal(t, 2, counts[b])
	assert.Equal(t, "x", b.Value())
	assert.Equal(t, 1, counts[o])
	assert.Equal(t, []string{ca.ID()}, origins)

	// programmatic update: nobody is pushed
	m.UpdateData("name", "z")
	assert.Equal(t, map[formbind.Element]int{a: 1, b: 2, o: 1}, counts)
}

func TestController_SetDataPushesOncePerBoundElement(t *testing.T) {
	counts := map[formbind.Element]int{}
	m := formbind.New(map[string]any{"name": "", "other": ""}, formbind.WithRegistry(countingRegistry(counts)))
	a, b, o := dom.Input("text"), dom.Input("text"), dom.Input("text")
	for el, p := range map[*dom.Element]string{a: "name", b: "name", o: "other"} {
		_, err := formbind.BindField(m, el, p, formbind.FieldOptions{})
		require.NoError(t, err)
	}

	m.SetData("name", "Grace")
	assert.Equal(t, map[formbind.Element]int{a: 2, b: 2, o: 1}, counts)
	assert.Equal(t, "Grace", a.Value())
	assert.Equal(t, "Grace", b.Value())
	assert.Equal(t, "", o.Value())
}

func TestController_RebindIsIdempotent(t *testing.T) {
	counts := map[formbind.Element]int{}
	m := formbind.New(map[string]any{"name": "n", "other": "o"}, formbind.WithRegistry(countingRegistry(counts)))
	in := dom.Input("text")
	c := formbind.NewFieldController(m, nil)
	assert.Equal(t, formbind.Unbound, c.State())

	for range 3 {
		require.NoError(t, c.Bind(in, "name", formbind.FieldOptions{}))
	}
	assert.Equal(t, 1, in.Listeners(bindmap.ChangeEvent))
	assert.Equal(t, 1, counts[in], "default is pushed once per path")

	var events int
	m.Watch(func(formbind.ChangeEvent) { events++ })
	in.Change("once")
	assert.Equal(t, 1, events)

	// moving to another path releases the old subscription and pushes the new default
	require.NoError(t, c.Bind(in, "other", formbind.FieldOptions{}))
	assert.Equal(t, 1, in.Listeners(bindmap.ChangeEvent))
	assert.Equal(t, "o", in.Value())
	assert.Equal(t, "other", c.Path())
	in.Change("moved")
	assert.Equal(t, "once", m.GetData("name"))
	assert.Equal(t, "moved", m.GetData("other"))
}

func TestController_DetachAttachDispose(t *testing.T) {
	m := formbind.New(map[string]any{"name": "a"}, formbind.WithRegistry(bindmap.Standard()))
	in := dom.Input("text")
	c, err := formbind.BindField(m, in, "name", formbind.FieldOptions{Validate: nonEmpty})
	require.NoError(t, err)

	c.Detach()
	assert.Equal(t, formbind.Detached, c.State())
	assert.Equal(t, 0, in.Listeners(bindmap.ChangeEvent))
	in.Change("ignored")
	assert.Equal(t, "a", m.GetData("name"))
	m.SetData("name", "b")
	assert.Equal(t, "ignored", in.Value())

	require.NoError(t, c.Attach())
	require.NoError(t, c.Attach())
	assert.Equal(t, 1, in.Listeners(bindmap.ChangeEvent))
	in.Change("c")
	assert.Equal(t, "c", m.GetData("name"))

	// binding the same element and path re-attaches
	c.Detach()
	require.NoError(t, c.Bind(in, "name", formbind.FieldOptions{}))
	assert.Equal(t, formbind.Bound, c.State())
	assert.Equal(t, 1, in.Listeners(bindmap.ChangeEvent))

	c.Dispose()
	assert.Equal(t, formbind.Disposed, c.State())
	assert.Equal(t, 0, in.Listeners(bindmap.ChangeEvent))
	assert.ErrorIs(t, c.Attach(), formbind.ErrDisposed)
	assert.ErrorIs(t, c.Bind(in, "name", formbind.FieldOptions{}), formbind.ErrDisposed)

	_, ok := m.Validator("name")
	assert.True(t, ok, "validator outlives the controller")

	assert.ErrorIs(t, formbind.NewFieldController(m, nil).Attach(), formbind.ErrNotBound)
}

func TestController_UnresolvableElementIsSkipped(t *testing.T) {
	logger, buf := testLogger()
	m := formbind.New(map[string]any{"name": "", "widget": "", "email": ""},
		formbind.WithRegistry(bindmap.Standard()), formbind.WithLogger(logger))
	b := formbind.NewBinder(m, nil)

	name, widget, email := dom.Input("text"), dom.New("my-widget"), dom.Input("email")
	_, err := b.Bind(name, "name", formbind.FieldOptions{})
	require.NoError(t, err)

	c, err := b.Bind(widget, "widget", formbind.FieldOptions{})
	assert.Nil(t, c)
	require.Error(t, err)
	assert.ErrorIs(t, err, formbind.ErrUnresolvableBinding)
	var be *formbind.BindError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "MY-WIDGET", be.Kind)
	assert.Equal(t, "widget", be.Path)

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"code":"unresolvable_binding"`)
	assert.Contains(t, buf.String(), `"kind":"MY-WIDGET"`)

	_, err = b.Bind(email, "email", formbind.FieldOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, b.Len())

	email.Change("ada@example.com")
	assert.Equal(t, "ada@example.com", m.GetData("email"))
	assert.False(t, widget.HasAttr(formbind.AttrFieldPath))
}

func TestController_CheckboxGroupSharedValidator(t *testing.T) {
	m := formbind.New(map[string]any{"items": []any{"done", "done", "done"}}, formbind.WithRegistry(bindmap.Standard()))
	allDone := func(any) error {
		return rules.Every(rules.Equals("", "done"))(m.GetData("items"))
	}

	boxes := make([]*dom.Element, 3)
	for i := range boxes {
		boxes[i] = dom.Input("checkbox", "value", "done")
		_, err := formbind.BindField(m, boxes[i], fmt.Sprintf("items.%d", i), formbind.FieldOptions{Validate: allDone})
		require.NoError(t, err)
		assert.True(t, boxes[i].Checked())
	}
	assert.True(t, m.IsDataValid())

	boxes[1].Toggle(false)
	assert.Equal(t, []any{"done", "", "done"}, m.GetData("items"))
	assert.False(t, m.IsDataValid())
	assert.True(t, boxes[1].HasAttr(formbind.AttrInvalid))
	assert.Equal(t, "every item must be completed", m.ErrorAt("items.1"))

	boxes[1].Toggle(true)
	assert.True(t, m.IsDataValid())
	assert.False(t, boxes[1].HasAttr(formbind.AttrInvalid))
	assert.Equal(t, false, m.ErrorAt("items.1"))
}

func TestController_CheckboxGroupBoundToBooleans(t *testing.T) {
	item := func(name string) any { return map[string]any{"name": name, "crossedOff": true} }
	m := formbind.New(map[string]any{"items": []any{item("milk"), item("eggs"), item("oats")}},
		formbind.WithRegistry(bindmap.Standard()))
	allDone := func(any) error {
		return rules.Every(rules.Truthy("crossedOff"))(m.GetData("items"))
	}

	boxes := make([]*dom.Element, 3)
	for i := range boxes {
		boxes[i] = dom.Input("checkbox", "value", "on")
		_, err := formbind.BindField(m, boxes[i], fmt.Sprintf("items.%d.crossedOff", i), formbind.FieldOptions{Validate: allDone})
		require.NoError(t, err)
		assert.True(t, boxes[i].Checked())
	}
	assert.True(t, m.IsDataValid())

	boxes[1].Toggle(false)
	assert.Equal(t, false, m.GetData("items.1.crossedOff"))
	assert.False(t, m.IsDataValid())
	assert.True(t, boxes[1].HasAttr(formbind.AttrInvalid))

	boxes[1].Toggle(true)
	assert.Equal(t, true, m.GetData("items.1.crossedOff"))
	assert.True(t, m.IsDataValid())
	assert.False(t, boxes[1].HasAttr(formbind.AttrInvalid))
	assert.Equal(t, "milk", m.GetData("items.0.name"))
}

func TestController_RadioGroupSelectsOne(t *testing.T) {
	m := formbind.New(map[string]any{"size": "m"}, formbind.WithRegistry(bindmap.Standard()))
	s, md := dom.Input("radio", "value", "s"), dom.Input("radio", "value", "m")
	for _, el := range []*dom.Element{s, md} {
		_, err := formbind.BindField(m, el, "size", formbind.FieldOptions{})
		require.NoError(t, err)
	}
	assert.False(t, s.Checked())
	assert.True(t, md.Checked())

	s.Toggle(true)
	assert.Equal(t, "s", m.GetData("size"))
	assert.False(t, md.Checked(), "sibling radio is refreshed from the model")
}

func TestController_MisconfiguredCheckboxWarns(t *testing.T) {
	logger, buf := testLogger()
	m := formbind.New(map[string]any{"agree": "yes"},
		formbind.WithRegistry(bindmap.Standard()), formbind.WithLogger(logger))
	box := dom.Input("checkbox")

	c, err := formbind.BindField(m, box, "agree", formbind.FieldOptions{})
	require.NoError(t, err)
	assert.Equal(t, formbind.Bound, c.State())
	assert.Contains(t, buf.String(), `"code":"misconfigured_default"`)
	assert.Contains(t, buf.String(), "must specify a value attribute")
	assert.False(t, box.Checked())
}

func TestController_PatternDerivation(t *testing.T) {
	logger, buf := testLogger()
	m := formbind.New(map[string]any{"zip": "", "code": "", "free": "", "explicit": ""},
		formbind.WithRegistry(bindmap.Standard()), formbind.WithLogger(logger))

	zip := dom.Input("text")
	_, err := formbind.BindField(m, zip, "zip", formbind.FieldOptions{
		Pattern:      `\d{5}`,
		ErrorMessage: "Zip-code should be 5 letters long",
	})
	require.NoError(t, err)
	zip.Change("123")
	assert.Equal(t, "Zip-code should be 5 letters long", m.ErrorAt("zip"))
	assert.True(t, zip.HasAttr(formbind.AttrInvalid))
	zip.Change("12345")
	assert.Equal(t, false, m.ErrorAt("zip"))

	code := dom.Input("text", "pattern", "[a-z]+")
	_, err = formbind.BindField(m, code, "code", formbind.FieldOptions{})
	require.NoError(t, err)
	code.Change("ABC")
	assert.Equal(t, true, m.ErrorAt("code"))

	explicit := dom.Input("text", "pattern", "[a-z]+")
	_, err = formbind.BindField(m, explicit, "explicit", formbind.FieldOptions{Validate: formbind.AlwaysValid})
	require.NoError(t, err)
	explicit.Change("ABC")
	assert.Equal(t, false, m.ErrorAt("explicit"))

	free := dom.Input("text")
	c, err := formbind.BindField(m, free, "free", formbind.FieldOptions{Pattern: "("})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"code":"bad_pattern"`)
	free.Change("anything")
	assert.True(t, c.IsValid())
	assert.NoError(t, c.Validate())
}

func TestController_NumberAndFileInputs(t *testing.T) {
	m := formbind.New(map[string]any{"age": 3.0, "avatar": "c:/fake/me.png"}, formbind.WithRegistry(bindmap.Standard()))
	age, avatar := dom.Input("number"), dom.Input("file")
	_, err := formbind.BindField(m, age, "age", formbind.FieldOptions{})
	require.NoError(t, err)
	_, err = formbind.BindField(m, avatar, "avatar", formbind.FieldOptions{})
	require.NoError(t, err)

	assert.Equal(t, "3", age.Value())
	assert.Equal(t, "", avatar.Value())

	age.Change("42")
	assert.Equal(t, 42.0, m.GetData("age"))
	age.Change("4x")
	assert.Equal(t, "4x", m.GetData("age"))
}

func TestController_VaadinField(t *testing.T) {
	m := formbind.New(map[string]any{"city": "Kyoto"}, formbind.WithRegistry(bindmap.Defaults()))
	el := dom.New("vaadin-text-field")
	_, err := formbind.BindField(m, el, "city", formbind.FieldOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Kyoto", el.Value())

	el.Change("Nara")
	assert.Equal(t, "Nara", m.GetData("city"))
}

// tagList is a custom element describing its own binding.
type tagList struct {
	*dom.Element
	tags []any
}

func newTagList() *tagList {
	t := &tagList{Element: dom.New("tag-list")}
	t.Adopt(t)
	return t
}

func (t *tagList) FormBindingEvents() []formbind.EventBinding {
	return []formbind.EventBinding{{
		Name: "tags-changed",
		Extract: func(ev formbind.Event) (any, error) {
			tl, ok := ev.Target.(*tagList)
			if !ok {
				return nil, fmt.Errorf("unexpected target %T", ev.Target)
			}
			return tl.tags, nil
		},
	}}
}

func (t *tagList) SetFormValue(v any) error {
	switch tags := v.(type) {
	case nil:
		t.tags = nil
	case []any:
		t.tags = tags
	default:
		return fmt.Errorf("tag-list takes a list, got %T", v)
	}
	return nil
}

func (t *tagList) add(tag string) {
	t.tags = append(slices.Clone(t.tags), tag)
	t.Dispatch("tags-changed", nil)
}

func TestController_SelfDescribingElementWins(t *testing.T) {
	var registryCalls int
	r := formbind.NewRegistry().Register("tag-list", formbind.Descriptor{
		Events:   []formbind.EventBinding{{Name: "change", Extract: func(formbind.Event) (any, error) { return "wrong", nil }}},
		SetValue: func(formbind.Element, any) error { registryCalls++; return nil },
	})
	m := formbind.New(map[string]any{"tags": []any{"go"}}, formbind.WithRegistry(r))
	tl := newTagList()

	_, err := formbind.BindField(m, tl, "tags", formbind.FieldOptions{})
	require.NoError(t, err)
	assert.Equal(t, []any{"go"}, tl.tags)
	assert.Equal(t, 0, registryCalls)
	assert.Equal(t, 0, tl.Listeners("change"))

	tl.add("forms")
	assert.Equal(t, []any{"go", "forms"}, m.GetData("tags"))

	m.SetData("tags", []any{})
	assert.Equal(t, []any{}, tl.tags)
}

func TestController_SelfDescribingWithoutRegistry(t *testing.T) {
	logger, buf := testLogger()
	m := formbind.New(map[string]any{"tags": "not a list"}, formbind.WithLogger(logger))
	tl := newTagList()
	c, err := formbind.BindField(m, tl, "tags", formbind.FieldOptions{})
	require.NoError(t, err)
	assert.Equal(t, formbind.Bound, c.State())
	assert.Contains(t, buf.String(), `"code":"misconfigured_default"`)

	_, err = formbind.BindField(m, dom.Input("text"), "tags", formbind.FieldOptions{})
	assert.ErrorIs(t, err, formbind.ErrUnresolvableBinding)
}

func TestController_ExtractFailureIsLogged(t *testing.T) {
	logger, buf := testLogger()
	r := formbind.NewRegistry().Register("x-broken", formbind.Descriptor{
		Events: []formbind.EventBinding{{Name: "change", Extract: func(formbind.Event) (any, error) {
			return nil, errors.New("boom")
		}}},
		SetValue: func(formbind.Element, any) error { return nil },
	})
	m := formbind.New(map[string]any{"v": "keep"}, formbind.WithRegistry(r), formbind.WithLogger(logger))
	el := dom.New("x-broken")
	_, err := formbind.BindField(m, el, "v", formbind.FieldOptions{})
	require.NoError(t, err)

	el.Change("ignored")
	assert.Equal(t, "keep", m.GetData("v"))
	assert.Contains(t, buf.String(), `"code":"extract_failed"`)
}
