package ice

import (
	"fmt"
	"testing"
)

func TestEasy(t *testing.T) {
	env := New()
	env.Put(MakeIntBox1)
	var target intBox
	err := env.Extract(&target)
	if err != nil {
		t.Fatalf("error creating: %v", err)
	}
	if target.i != 1 {
		t.Fatalf("Incorrect value: %d, expected 1", target.i)
	}
}

func TestArgs(t *testing.T) {
	env := New()
	env.Put(NewDB)
	env.Put(NewMemStorage)
	env.Put(NewYesAuther)
	var db DB
	err := env.Extract(&db)
	if err != nil {
		t.Fatal(err)
	}
	e, err := db.IsEven("token")
	if e != true || err != nil {
		t.Fatalf("expected true, nil; was %v %v", e, err)
	}
	if err = db.Inc("token"); err != nil {
		t.Fatalf("expected no error; was %v", err)
	}
	e, err = db.IsEven("token")
	if e != false || err != nil {
		t.Fatalf("expected false, nil; was %v %v", e, err)
	}
}

func TestCycle(t *testing.T) {
	env := New()
	env.Put(MakeEvener)
	env.Put(MakeOdder)
	var evener *Evener
	err := env.Extract(&evener)
	if err == nil {
		t.Fatal("expected error creating a cycle")
	}
	if KindOf(err) != CircularDependency {
		t.Fatalf("expected CircularDependency; was %v", err)
	}
	ie := err.(*InjectionError)
	if ie.Path.Len() != 3 {
		t.Fatalf("expected path Evener -> Odder -> Evener; was %v", ie.Path)
	}
}

func TestStructCycle(t *testing.T) {
	env := New()
	var p *ping
	err := env.Extract(&p)
	if KindOf(err) != CircularDependency {
		t.Fatalf("expected CircularDependency; was %v", err)
	}
}

func TestErrors(t *testing.T) {
	env := New()
	env.Put(func() (intBox, error) {
		return intBox{2}, nil
	})
	var b intBox
	err := env.Extract(&b)
	if err != nil || b.i != 2 {
		t.Fatalf("expected 2, nil; was %v %v", b.i, err)
	}

	env = New()
	boom := fmt.Errorf("Error!")
	env.Put(func() (intBox, error) {
		return intBox{3}, boom
	})
	err = env.Extract(&b)
	if err == nil {
		t.Fatal("expected error when provider returns error")
	}
	if KindOf(err) != ConstructionFailed {
		t.Fatalf("expected ConstructionFailed; was %v", err)
	}
}

func TestPanic(t *testing.T) {
	env := New()
	env.Put(func() intBox {
		panic("no box today")
	})
	var b intBox
	err := env.Extract(&b)
	if KindOf(err) != ConstructionFailed {
		t.Fatalf("expected ConstructionFailed; was %v", err)
	}
	if err.(*InjectionError).GoStack == "" {
		t.Fatal("expected the go stack of the panic")
	}
}

func TestBadProviders(t *testing.T) {
	env := New()
	for _, p := range []interface{}{
		nil,
		17,
		func() {},
		func() (int, int) { return 1, 2 },
		func(...int) intBox { return intBox{} },
	} {
		if err := env.Put(p); KindOf(err) != InvalidRegistration {
			t.Fatalf("expected InvalidRegistration for %T; was %v", p, err)
		}
	}
}

func TestModule(t *testing.T) {
	env := New()
	err := env.InstallModule(ModuleFunc(func(c *Container) error {
		return c.Put(NewMemStorage, NewYesAuther, NewDB)
	}))
	if err != nil {
		t.Fatal(err)
	}
	var db DB
	if err := env.Extract(&db); err != nil {
		t.Fatal(err)
	}

	err = env.InstallModule(ModuleFunc(func(c *Container) error {
		panic("bad module")
	}))
	if err == nil {
		t.Fatal("expected a panicking module to fail")
	}
}
