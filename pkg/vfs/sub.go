package vfs

import "github.com/layerfs/layerfs/pkg/vpath"

// subTranslator implements PathTranslator for a rooted subtree view: it
// maps a view-relative path into subPath/relative in the delegate's
// namespace, and maps a delegate path back by asserting it falls under
// subPath and stripping that prefix.
type subTranslator struct {
	subPath vpath.Path
}

func (t *subTranslator) ToDelegate(path vpath.Path) (vpath.Path, error) {
	return vpath.Join(t.subPath, path.ToRelative()), nil
}

func (t *subTranslator) FromDelegate(path vpath.Path) (vpath.Path, error) {
	if path.Equal(t.subPath) {
		return vpath.Root, nil
	}
	if !path.IsInDirectory(t.subPath, true) {
		return vpath.Null, New("ConvertPathFromDelegate", path, KindInvariantViolation)
	}
	if t.subPath.Equal(vpath.Root) {
		return path, nil
	}
	relative := path.String()[len(t.subPath.String())+1:]
	return vpath.Parse("/" + relative), nil
}

// NewSub constructs a filesystem that exposes only the subtree of
// delegate rooted at subPath. subPath must already exist as a directory
// in delegate, or construction fails with KindNotFound. If owned is
// true, closing the returned filesystem also closes delegate.
func NewSub(delegate FileSystem, subPath vpath.Path, owned bool) (FileSystem, error) {
	if err := subPath.AssertAbsolute(); err != nil {
		return nil, Wrap("NewSub", subPath, KindInvalidPath, err)
	}

	exists, err := delegate.DirectoryExists(subPath)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, New("NewSub", subPath, KindNotFound)
	}

	translator := &subTranslator{subPath: subPath}
	compose := NewComposeBase(delegate, owned, translator)
	return NewBase(compose), nil
}
