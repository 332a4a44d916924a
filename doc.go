// Package formbind keeps nested form data synchronized with rendered field
// elements and layers per-field validation and change notification on top.
//
// formbind provides:
//
// - A Model owning the data snapshot, per-path validators and an error state
// mirroring the data (false, true or a message per leaf)
// - A Registry mapping element kinds to Descriptors (events to listen to and
// how to read and write values); custom elements may describe themselves
// - FieldControllers binding one element to one dotted path, with an
// attach/detach lifecycle and idempotent rebinding
// - A synchronous change channel (Model.Watch) publishing one event per write
//
// Design policy:
// - Keep the binding core in the root package; path access lives in deep/,
// stock descriptors in bindmap/, validator combinators in rules/.
// - The core does not render. Hosts call Binder.Bind on every render pass and
// Attach/Detach when elements enter or leave the document.
// - Failures degrade a single field (logged with zerolog) and never abort the
// form.
//
// Typical usage:
//
//	m := formbind.New(map[string]any{"name": ""}, formbind.WithRegistry(bindmap.Defaults()))
//	b := formbind.NewBinder(m, nil)
//	b.Bind(nameInput, "name", formbind.FieldOptions{Validate: rules.Required()})
//
//	if err := m.ValidateAllFields(); err != nil {
//		iss, _ := formbind.AsIssues(err)
//		...
//	}
package formbind
