package api

// Model is implemented by wire types that translate into an internal value M.
// Each wire type pairs it with an XFromModel function going the other way.
type Model[M any] interface {
	IntoModel() (M, error)
}

func fromModels[M, W any](ms []M, from func(M) W) []W {
	out := make([]W, 0, len(ms))
	for _, m := range ms {
		out = append(out, from(m))
	}
	return out
}

// intoModels converts a list, stopping at the first element that fails.
func intoModels[M any, W Model[M]](ws []W) ([]M, error) {
	out := make([]M, 0, len(ws))
	for _, w := range ws {
		m, err := w.IntoModel()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
