package edition

import (
	_ "embed"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/todo-manager/internal/entity"
)

//go:embed schema.cue
var schemaCUE string

var (
	schemaMu   sync.Mutex
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error
)

func flowEditionSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		schema := schemaCtx.CompileString(schemaCUE, cue.Filename("schema.cue"))
		if err := schema.Err(); err != nil {
			schemaErr = err
			return
		}
		schemaDef = schema.LookupPath(cue.ParsePath("#FlowEdition"))
		schemaErr = schemaDef.Err()
	})
	return schemaCtx, schemaDef, schemaErr
}

// checkSchema validates a decoded YAML document against #FlowEdition.
func checkSchema(doc any) error {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	ctx, def, err := flowEditionSchema()
	if err != nil {
		return entity.NewInvalidEditionError("loading edition schema", err)
	}

	value := ctx.Encode(doc)
	if err := value.Err(); err != nil {
		return entity.NewInvalidEditionError("encoding edition", err)
	}
	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return entity.NewInvalidEditionError("edition does not match the schema", err)
	}
	return nil
}
